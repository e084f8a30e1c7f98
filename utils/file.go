package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SanitizeFileName replaces every character outside [A-Za-z0-9._-] with an
// underscore and strips any directory components.
func SanitizeFileName(name string) string {
	name = filepath.Base(filepath.Clean("/" + name))
	if name == "/" || name == "." {
		return "file"
	}
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' || r == '.' {
			return r
		}
		return '_'
	}, name)
}

// WriteScratchFile writes data to a uniquely named file in dir, creating dir
// if needed. The returned cleanup removes the file.
func WriteScratchFile(dir, name string, data []byte) (string, func(), error) {
	// Create upload directory if it doesn't exist
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", nil, fmt.Errorf("failed to create scratch directory: %w", err)
	}

	safe := SanitizeFileName(name)
	ext := filepath.Ext(safe)
	pattern := strings.TrimSuffix(safe, ext) + "_*" + ext
	f, err := os.CreateTemp(dir, pattern)
	if err != nil {
		return "", nil, fmt.Errorf("failed to create scratch file: %w", err)
	}
	path := f.Name()
	cleanup := func() { os.Remove(path) }

	if _, err := f.Write(data); err != nil {
		f.Close()
		cleanup()
		return "", nil, fmt.Errorf("failed to write scratch file: %w", err)
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("failed to close scratch file: %w", err)
	}
	return path, cleanup, nil
}
