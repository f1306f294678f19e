package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrMissingEnv is wrapped by every Required failure.
var ErrMissingEnv = errors.New("missing required env")

// Required maps an env var name to its loaded value.
type Required map[string]string

// Check reports every empty entry of req at once, sorted by name.
func (req Required) Check() error {
	var missing []string
	for name, value := range req {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	slices.Sort(missing)
	return fmt.Errorf("%w: %s", ErrMissingEnv, strings.Join(missing, ", "))
}
