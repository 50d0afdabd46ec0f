package config

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	yaml "gopkg.in/yaml.v3"
)

var secretValue = SecretStringValue

func TestSecretString_Marshal(t *testing.T) {
	tests := []struct {
		name     string
		input    SecretString
		wantJSON *string
		wantYAML string
	}{
		{"empty", "", nil, "null\n"},
		{"short", "x", &secretValue, SecretStringValue + "\n"},
		{"long", "this-is-a-very-long-secret-token", &secretValue, SecretStringValue + "\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			j, err := json.Marshal(tt.input)
			if err != nil {
				t.Fatalf("json.Marshal() error = %v", err)
			}
			// encoding/json escapes angle brackets, compare decoded values
			var got *string
			if err := json.Unmarshal(j, &got); err != nil {
				t.Fatalf("json.Unmarshal(%s) error = %v", j, err)
			}
			if (got == nil) != (tt.wantJSON == nil) || (got != nil && *got != *tt.wantJSON) {
				t.Errorf("json.Marshal() = %s, want %v", j, tt.wantJSON)
			}
			y, err := yaml.Marshal(tt.input)
			if err != nil {
				t.Fatalf("yaml.Marshal() error = %v", err)
			}
			if string(y) != tt.wantYAML {
				t.Errorf("yaml.Marshal() = %q, want %q", y, tt.wantYAML)
			}
		})
	}
}

func TestSecretString_InStruct(t *testing.T) {
	srv := ServerConfig{Listen: "localhost:1", Token: "top-secret"}
	data, err := yaml.Marshal(srv)
	if err != nil {
		t.Fatalf("yaml.Marshal() error = %v", err)
	}
	if strings.Contains(string(data), "top-secret") {
		t.Errorf("secret leaked into yaml: %s", data)
	}
	if s := fmt.Sprintf("%v", srv.Token); s != SecretStringValue {
		t.Errorf("Sprintf(token) = %q, want %q", s, SecretStringValue)
	}
}

func TestSecretString_Matches(t *testing.T) {
	s := SecretString("abc")
	if !s.Matches("abc") {
		t.Error("Matches(abc) = false, want true")
	}
	if s.Matches("abd") || s.Matches("") {
		t.Error("Matches() accepted wrong value")
	}
	if SecretString("").Matches("") {
		t.Error("empty secret must not match")
	}
}
