package bridge

import (
	"fmt"
	"path/filepath"
)

// ExportPath resolves a remotely requested export target. Only a bare file name is
// accepted and it lands in dir, or in the working directory when dir is empty.
func ExportPath(dir, requested string) (string, error) {
	if requested == "" {
		return "", fmt.Errorf("path is required")
	}
	name := filepath.Base(requested)
	if name != requested || name == "." || name == ".." {
		return "", fmt.Errorf("path %q must be a bare file name", requested)
	}
	if dir == "" {
		return name, nil
	}
	return filepath.Join(dir, name), nil
}
