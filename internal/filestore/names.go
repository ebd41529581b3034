package filestore

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"
)

// NameSet answers whether a name is already taken.
type NameSet interface {
	Has(name string) bool
}

// Names is an in-memory NameSet.
type Names map[string]struct{}

func (n Names) Has(name string) bool {
	_, ok := n[name]
	return ok
}

// NextAvailableName returns desired when it is free, otherwise the first free
// "base_N.ext" with N counting up from 1.
func NextAvailableName(existing NameSet, desired string) string {
	if !existing.Has(desired) {
		return desired
	}
	ext := filepath.Ext(desired)
	base := strings.TrimSuffix(desired, ext)
	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s_%d%s", base, n, ext)
		if !existing.Has(candidate) {
			return candidate
		}
	}
}

var ErrInvalidName = errors.New("invalid file name")

// BaseName flattens an archive entry path to its final element.
func BaseName(entryName string) (string, error) {
	name := strings.ReplaceAll(entryName, "\\", "/")
	name = path.Base(strings.TrimRight(name, "/"))
	if err := ValidateName(name); err != nil {
		return "", fmt.Errorf("entry %q: %w", entryName, err)
	}
	return name, nil
}

// ValidateName rejects anything that is not a single plain path element.
func ValidateName(name string) error {
	switch name {
	case "", ".", "..", "/":
		return ErrInvalidName
	}
	if strings.ContainsAny(name, "/\\\x00") {
		return ErrInvalidName
	}
	return nil
}
