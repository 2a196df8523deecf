package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ExpandPath expands a path to avoid `~`.
func ExpandPath(path string) (string, error) {
	if !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting user home dir: %w", err)
	}
	return filepath.Join(home, path[2:]), nil
}

// CreateDirectoryIfNotExist creates a directory if it doesn't already exist.
func CreateDirectoryIfNotExist(directory string) error {
	ok, err := DirectoryExists(directory)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	if err := os.MkdirAll(directory, 0755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}
	return nil
}

// DirectoryExists returns true if the specified directory exists.
func DirectoryExists(directory string) (bool, error) {
	info, err := os.Stat(directory)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("checking directory existence: %w", err)
	}
	return info.IsDir(), nil
}

// Exists returns true if the specified file exists.
func Exists(filePath string) (bool, error) {
	info, err := os.Stat(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("checking file existence: %w", err)
	}
	return !info.IsDir(), nil
}
