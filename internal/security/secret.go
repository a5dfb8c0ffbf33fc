package security

import (
	"errors"
	"os"
	"strings"
)

// ErrInvalidSecret is returned when the configured signing secret is empty.
var ErrInvalidSecret = errors.New("invalid signing secret")

// LoadSecret resolves the configured signing secret. s may be the secret
// itself or a path to a file holding it; a value that names an existing file
// is read from disk, anything else is used inline.
func LoadSecret(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, ErrInvalidSecret
	}
	if info, err := os.Stat(s); err == nil && !info.IsDir() {
		b, err := os.ReadFile(s)
		if err != nil {
			return nil, err
		}
		b = []byte(strings.TrimSpace(string(b)))
		if len(b) == 0 {
			return nil, ErrInvalidSecret
		}
		return b, nil
	}
	return []byte(s), nil
}
