// Package profiles is the catalog of the bundled WireGuard client profiles.
//
// A profile is identified by its asset path, e.g. "wg/client07.conf".
package profiles

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strconv"
	"strings"
)

const (
	// Count is the number of bundled profiles.
	Count = 30
	// Dir is the asset directory holding the profiles.
	Dir = "wg"
)

// ErrUnknownProfile is returned for identifiers outside the bundled set.
var ErrUnknownProfile = errors.New("unknown profile")

// Name returns the identifier of the n-th profile (1-based).
func Name(n int) string {
	return fmt.Sprintf("%s/client%02d.conf", Dir, n)
}

// Names returns all profile identifiers in order.
func Names() []string {
	names := make([]string, Count)
	for i := range names {
		names[i] = Name(i + 1)
	}
	return names
}

// Normalize maps "client07", "client07.conf" or "wg/client07.conf" to the
// canonical identifier.
func Normalize(id string) (string, error) {
	n, ok := number(id)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownProfile, id)
	}
	return Name(n), nil
}

// Exists reports whether id names a bundled profile.
func Exists(id string) bool {
	_, ok := number(id)
	return ok
}

// Label returns the display name, "Client 07" for "wg/client07.conf".
// Unknown identifiers are returned unchanged.
func Label(id string) string {
	n, ok := number(id)
	if !ok {
		return id
	}
	return fmt.Sprintf("Client %02d", n)
}

// Read returns the configuration text of the profile from fsys.
func Read(fsys fs.FS, id string) (string, error) {
	name, err := Normalize(id)
	if err != nil {
		return "", err
	}
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return "", fmt.Errorf("failed to read profile %s: %w", name, err)
	}
	return string(data), nil
}

func number(id string) (int, bool) {
	id = strings.TrimSpace(id)
	id = strings.TrimPrefix(id, Dir+"/")
	if strings.Contains(id, "/") {
		return 0, false
	}
	id = strings.TrimSuffix(id, path.Ext(id))
	digits, ok := strings.CutPrefix(strings.ToLower(id), "client")
	if !ok || len(digits) != 2 {
		return 0, false
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n < 1 || n > Count {
		return 0, false
	}
	return n, true
}
