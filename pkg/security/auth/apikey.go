package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"errors"

	"machinehub/statusboard/pkg/config"
)

var (
	// ErrMissingKey is returned when a request carries no API key.
	ErrMissingKey = errors.New("missing API key")

	// ErrInvalidKey is returned for unknown or disabled keys.
	ErrInvalidKey = errors.New("invalid API key")
)

type key struct {
	name     string
	digest   [sha256.Size]byte
	disabled bool
}

// Validator checks API keys against a fixed set.
type Validator struct {
	keys []key
}

// NewValidator builds a validator from configured keys.
func NewValidator(keys []config.APIKeyConfig) *Validator {
	v := &Validator{keys: make([]key, 0, len(keys))}
	for _, k := range keys {
		v.keys = append(v.keys, key{
			name:     k.Name,
			digest:   sha256.Sum256([]byte(k.Key)),
			disabled: k.Disabled,
		})
	}
	return v
}

// Validate returns the name of the holder of presented.
func (v *Validator) Validate(presented string) (string, error) {
	if presented == "" {
		return "", ErrMissingKey
	}

	// Hashing first gives equal-length inputs to the constant-time compare.
	digest := sha256.Sum256([]byte(presented))
	match := -1
	for i := range v.keys {
		if subtle.ConstantTimeCompare(digest[:], v.keys[i].digest[:]) == 1 {
			match = i
		}
	}
	if match < 0 || v.keys[match].disabled {
		return "", ErrInvalidKey
	}
	return v.keys[match].name, nil
}

// Len returns the number of configured keys.
func (v *Validator) Len() int {
	return len(v.keys)
}
