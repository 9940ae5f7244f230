package tdworkflow

import (
	"os"
	"strings"
)

// validateID rejects identifiers the API can never resolve.
func validateID(op, field string, id int64) error {
	if id <= 0 {
		return invalid(op, field, "must be a positive integer, got %d", id)
	}
	return nil
}

// validateName rejects empty names and names containing path separators.
func validateName(op, field, name string) error {
	if strings.TrimSpace(name) == "" {
		return invalid(op, field, "is required")
	}
	if strings.ContainsAny(name, "/\\") {
		return invalid(op, field, "must not contain path separators, got %q", name)
	}
	return nil
}

// validateDir checks that path exists and is a directory.
func validateDir(op, field, path string) error {
	if path == "" {
		return invalid(op, field, "is required")
	}
	info, err := os.Stat(path)
	if err != nil {
		return invalid(op, field, "%v", err)
	}
	if !info.IsDir() {
		return invalid(op, field, "%q is not a directory", path)
	}
	return nil
}
