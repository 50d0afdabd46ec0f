// Package convert is batch driver of the converter: it finds HTML and
// Markdown sources in files, directory trees and zip archives and writes
// DOCX documents next to them or into destination directory.
package convert

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime/debug"
	"sort"
	"strings"
	"time"

	"github.com/maruel/natural"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/ianaindex"

	"htmldocx/archive"
	"htmldocx/config"
	"htmldocx/docx"
	"htmldocx/media"
	"htmldocx/state"
	dbg "htmldocx/utils/debug"
)

// largest source we are willing to read into memory
const maxSourceSize = 256 << 20

func Run(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("convert")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no input source has been specified")
	}
	src, err = filepath.Abs(src)
	if err != nil {
		return err
	}

	dst := cmd.Args().Get(1)
	if len(dst) == 0 {
		if dst, err = os.Getwd(); err != nil {
			return fmt.Errorf("unable to get working directory: %w", err)
		}
	}
	if dst, err = filepath.Abs(dst); err != nil {
		return err
	}
	if cmd.Args().Len() > 2 {
		log.Warn("Mailformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}

	if path := cmd.String("options"); len(path) > 0 {
		opts, err := config.LoadOptions(path, env.Cfg.Document.Options, log)
		if err != nil {
			return err
		}
		env.Options = &opts
		if env.Rpt != nil {
			env.Rpt.Store("options"+filepath.Ext(path), path)
		}
	}

	env.NoDirs, env.Overwrite = cmd.Bool("nodirs"), cmd.Bool("overwrite")

	// Since zip "standard" does not define file name encoding we may need to
	// force archaic code page for old archives
	cp := cmd.String("force-zip-cp")
	if len(cp) > 0 {
		env.CodePage, err = ianaindex.IANA.Encoding(cp)
		if err != nil || env.CodePage == nil {
			log.Warn("Unknown character set specification. Ignoring...", zap.String("charset", cp), zap.Error(err))
			env.CodePage = nil
		} else {
			n, _ := ianaindex.IANA.Name(env.CodePage)
			log.Debug("Forcefully converting all non UTF-8 file names in archives", zap.String("charset", n))
		}
	}

	log.Info("Processing starting", zap.String("source", src), zap.String("destination", dst))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	return process(ctx, src, dst, log)
}

// process determines the input type (directory, archive, or single file) and
// processes accordingly. Source path may continue inside of zip archive.
func process(ctx context.Context, src, dst string, log *zap.Logger) error {
	in := &state.EnvFromContext(ctx).Cfg.Document.Input

	var head, tail string
	for head = src; len(head) != 0; head, tail = filepath.Split(head) {
		if err := ctx.Err(); err != nil {
			return err
		}

		head = strings.TrimSuffix(head, string(filepath.Separator))

		fi, err := os.Stat(head)
		if err != nil {
			// does not exists - probably path in archive
			continue
		}

		if fi.Mode().IsDir() {
			if len(tail) != 0 {
				// directory cannot have tail - it would be simple file
				return fmt.Errorf("input source was not found (%s) => (%s)", head, strings.TrimPrefix(src, head))
			}
			if err := processDir(ctx, head, dst, log); err != nil {
				return fmt.Errorf("unable to process directory: %w", err)
			}
			break
		}

		if !fi.Mode().IsRegular() {
			return fmt.Errorf("unexpected path mode for (%s) => (%s)", head, strings.TrimPrefix(src, head))
		}

		isArchive, err := isArchiveFile(head)
		if err != nil {
			return fmt.Errorf("unable to check archive type: %w", err)
		}
		if isArchive {
			// we need to look inside to see if path makes sense
			tail = filepath.ToSlash(strings.TrimPrefix(strings.TrimPrefix(src, head), string(filepath.Separator)))
			if err := processArchive(ctx, head, tail, "", dst, log); err != nil {
				return fmt.Errorf("unable to process archive: %w", err)
			}
			break
		}

		kind, enc, err := isSourceFile(head, in)
		if err != nil {
			return fmt.Errorf("unable to check file type: %w", err)
		}
		if kind != kindNone && len(tail) == 0 {
			// single file has no tail
			if err := processFile(ctx, head, filepath.Base(head), dst, kind, enc, log); err != nil {
				log.Error("Unable to process file", zap.String("file", head), zap.Error(err))
			}
			break
		}
		return fmt.Errorf("input was not recognized as HTML or Markdown document (%s)", head)
	}
	if len(head) == 0 {
		return fmt.Errorf("input source was not found (%s)", src)
	}
	return nil
}

// processDir finds convertible files and archives in directory tree and
// processes them in natural order.
func processDir(ctx context.Context, dir, dst string, log *zap.Logger) error {
	in := &state.EnvFromContext(ctx).Cfg.Document.Input

	var paths []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err != nil {
			log.Warn("Skipping path", zap.String("path", path), zap.Error(err))
			return nil
		}
		if info.Mode().IsRegular() {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return err
	}
	sort.Sort(natural.StringSlice(paths))

	count := 0
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return err
		}
		rel := strings.TrimPrefix(strings.TrimPrefix(path, dir), string(filepath.Separator))

		isArchive, err := isArchiveFile(path)
		if err != nil {
			log.Warn("Skipping file", zap.String("file", path), zap.Error(err))
			continue
		}
		if isArchive {
			if err := processArchive(ctx, path, "", filepath.Dir(rel), dst, log); err != nil {
				log.Error("Unable to process archive", zap.String("file", path), zap.Error(err))
			}
			continue
		}

		kind, enc, err := isSourceFile(path, in)
		if err != nil {
			log.Warn("Skipping file", zap.String("file", path), zap.Error(err))
			continue
		}
		if kind == kindNone {
			log.Debug("Skipping file, not recognized as document or archive", zap.String("file", path))
			continue
		}
		count++
		if err := processFile(ctx, path, rel, dst, kind, enc, log); err != nil {
			log.Error("Unable to process file", zap.String("file", path), zap.Error(err))
		}
	}
	if count == 0 {
		log.Debug("Nothing to process", zap.String("dir", dir))
	}
	return nil
}

func processFile(ctx context.Context, path, src, dst string, kind sourceKind, enc srcEncoding, log *zap.Logger) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return processSource(ctx, file, src, dst, kind, enc, log)
}

// processArchive walks all files inside archive, finds convertible files
// under "pathIn" and processes them.
func processArchive(ctx context.Context, path, pathIn, pathOut, dst string, log *zap.Logger) (err error) {
	env := state.EnvFromContext(ctx)
	in := &env.Cfg.Document.Input

	count := 0
	defer func() {
		if err == nil && count == 0 {
			log.Debug("Nothing to process", zap.String("archive", path))
		}
	}()

	return archive.Walk(path, pathIn, func(archive string, f *zip.File) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		kind, enc, err := isSourceInArchive(f, in)
		if err != nil {
			log.Warn("Skipping file in archive",
				zap.String("archive", archive), zap.String("path", f.FileHeader.Name), zap.Error(err))
			return nil
		}
		if kind == kindNone {
			log.Debug("Skipping file, not recognized as document", zap.String("archive", archive), zap.String("file", f.FileHeader.Name))
			return nil
		}

		count++

		r, err := f.Open()
		if err != nil {
			log.Error("Unable to process file in archive",
				zap.String("archive", archive), zap.String("file", f.FileHeader.Name), zap.Error(err))
			return nil
		}
		defer r.Close()

		pathInArchive := f.FileHeader.Name
		if cp := env.CodePage; cp != nil && f.FileHeader.NonUTF8 {
			// forcing zip file name encoding
			if n, err := cp.NewDecoder().String(pathInArchive); err == nil {
				pathInArchive = n
			} else {
				n, _ = ianaindex.IANA.Name(cp)
				log.Warn("Unable to convert archive name from specified encoding",
					zap.String("charset", n), zap.String("path", pathInArchive), zap.Error(err))
			}
		}
		if err := processSource(ctx, r, filepath.Join(pathOut, filepath.FromSlash(pathInArchive)), dst, kind, enc, log); err != nil {
			log.Error("Unable to process file in archive",
				zap.String("archive", archive), zap.String("file", f.FileHeader.Name), zap.Error(err))
		}
		return nil
	})
}

// processSource converts single document. "src" is part of the source path
// (always including file name) relative to the original path. When actual
// file was specified it will be just base file name without a path. When
// looking inside archive or directory it will be relative path inside archive
// or directory (including base file name). "dst" is the destination
// directory where the converted file should be written.
func processSource(ctx context.Context, r io.Reader, src, dst string, kind sourceKind, enc srcEncoding, log *zap.Logger) (rerr error) {
	env := state.EnvFromContext(ctx)

	var outputName string

	log.Info("Conversion starting", zap.String("from", src), zap.Stringer("kind", kind))
	defer func(start time.Time) {
		if r := recover(); r != nil {
			log.Error("Conversion ended with panic",
				zap.Any("panic", r), zap.Duration("elapsed", time.Since(start)), zap.String("to", outputName), zap.ByteString("stack", debug.Stack()))
			rerr = fmt.Errorf("conversion panic: %v", r)
		} else if rerr == nil {
			log.Info("Conversion completed", zap.Duration("elapsed", time.Since(start)), zap.String("to", outputName))
		}
	}(time.Now())

	doc, err := readSource(r, enc, kind, maxSourceSize)
	if err != nil {
		return fmt.Errorf("unable to read source (%s): %w", src, err)
	}
	if kind == kindMarkdown {
		if doc, err = markdownToHTML([]byte(doc), env.Cfg.Document.Input.MarkdownGFM); err != nil {
			return fmt.Errorf("unable to prepare markdown source (%s): %w", src, err)
		}
	}

	values := newValues(src, doc, kind, time.Now())
	opts := documentOptions(values, env)

	// Determine output file name and path based on input and configuration.
	outputName = buildOutputPath(values, src, dst, env)

	// Check if output file already exists
	if _, err := os.Stat(outputName); err == nil {
		if !env.Overwrite {
			return fmt.Errorf("output file already exists: %s", outputName)
		}
		log.Warn("Overwriting existing file", zap.String("file", outputName))
	} else if !os.IsNotExist(err) {
		return err
	}

	pkg, err := docx.Build(ctx, doc, opts, Deps(env, log))
	if err != nil {
		return fmt.Errorf("unable to convert (%s): %w", src, err)
	}
	if err := pkg.Save(outputName, env.Cfg.Document.FixZip); err != nil {
		return fmt.Errorf("unable to save result: %w", err)
	}

	// Store conversion input and result for debugging
	if env.Rpt != nil {
		base := filepath.Base(outputName)
		name := strings.TrimSuffix(base, outputExt)
		env.Rpt.StoreData(fmt.Sprintf("source-%s.html", name), []byte(doc))
		if tree, err := dbg.DumpHTML(doc); err == nil {
			env.Rpt.StoreData(fmt.Sprintf("structure-%s.txt", name), []byte(tree))
		}
		env.Rpt.Store(fmt.Sprintf("result-%s", base), outputName)
	}
	return nil
}

// documentOptions fills document metadata from configuration when options
// leave it empty.
func documentOptions(v *Values, env *state.LocalEnv) config.ConversionOptions {
	opts := env.ConversionOptions()
	meta := env.Cfg.Document.Metainformation

	if len(opts.Title) == 0 {
		opts.Title = v.Title
		if len(meta.TitleTemplate) > 0 {
			title, err := expandTemplate(v, config.MetaTitleTemplateFieldName, meta.TitleTemplate)
			if err != nil {
				env.Log.Warn("Unable to prepare document title", zap.Error(err))
			} else {
				opts.Title = strings.TrimSpace(title)
			}
		}
	}
	if len(opts.Creator) == 0 {
		opts.Creator = meta.Creator
	}
	return opts
}

// Deps prepares conversion collaborators from program configuration.
func Deps(env *state.LocalEnv, log *zap.Logger) docx.Deps {
	doc := &env.Cfg.Document
	return docx.Deps{
		Fetcher: media.NewHTTPFetcher(&doc.Fetch),
		Images:  &doc.Images,
		Workers: doc.Fetch.Workers,
		Timeout: doc.Fetch.Timeout,
		FixZip:  doc.FixZip,
		Log:     log,
	}
}
