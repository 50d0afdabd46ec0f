package config

import "crypto/subtle"

// SecretStringValue replaces secrets in any serialized form.
const SecretStringValue = "<secret>"

// SecretString holds values which must never end up in logs, configuration
// dumps or debug reports.
type SecretString string

func (s SecretString) MarshalJSON() ([]byte, error) {
	if len(s) == 0 {
		return []byte("null"), nil
	}
	return []byte("\"" + SecretStringValue + "\""), nil
}

func (s SecretString) MarshalYAML() (any, error) {
	if len(s) == 0 {
		return nil, nil
	}
	return SecretStringValue, nil
}

// String makes fmt and zap.Stringer safe.
func (s SecretString) String() string {
	if len(s) == 0 {
		return ""
	}
	return SecretStringValue
}

// Matches compares presented value with the secret in constant time. Empty
// secret never matches.
func (s SecretString) Matches(presented string) bool {
	if len(s) == 0 {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(s), []byte(presented)) == 1
}
