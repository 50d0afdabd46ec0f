// Package misc holds build time program identification.
package misc

import (
	"os"
	"path/filepath"
	"strings"
)

// Set by the linker: -ldflags "-X htmldocx/misc.version=... -X htmldocx/misc.gitHash=...".
var (
	version = "dev"
	gitHash = "unknown"
	appName = ""
)

// GetAppName returns program name without extension.
func GetAppName() string {
	if len(appName) > 0 {
		return appName
	}
	name := filepath.Base(os.Args[0])
	if strings.HasSuffix(name, ".test") {
		// go test binaries
		return "htmldocx"
	}
	name = strings.TrimSuffix(name, filepath.Ext(name))
	if len(name) == 0 || name == "." {
		return "htmldocx"
	}
	return name
}

func GetVersion() string {
	return version
}

func GetGitHash() string {
	return gitHash
}
