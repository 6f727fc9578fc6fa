package filesystem

import (
	"fmt"
	"os"
)

// Error constants for better error handling
var (
	ErrFileNotFound = fmt.Errorf("filesystem: file not found")
	ErrInvalidPath  = fmt.Errorf("filesystem: invalid path")
)

// Filesystem is the read-side surface the HTTP engine's file delivery
// and the controller glue depend on. Only local disk is implemented;
// tests substitute fakes.
type Filesystem interface {
	ReadFile(path string) ([]byte, error)
	FileExists(path string) (bool, error)
	FileSize(path string) (int64, error)
	FileMetaData(path string) (os.FileInfo, error)
	IsFile(path string) (bool, error)
	IsDirectory(path string) (bool, error)
}

// Local is the process-wide local-disk filesystem.
var Local Filesystem = &localFileSystem{}

type localFileSystem struct{}

func (filesystem *localFileSystem) ReadFile(path string) ([]byte, error) {
	if path == "" {
		return nil, ErrInvalidPath
	}

	isFile, err := filesystem.IsFile(path)
	if err != nil {
		return nil, err
	}
	if !isFile {
		return nil, ErrFileNotFound
	}

	return os.ReadFile(path)
}

func (filesystem *localFileSystem) FileExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}

		return false, err
	}

	return true, nil
}

func (filesystem *localFileSystem) FileSize(path string) (int64, error) {
	info, err := filesystem.FileMetaData(path)
	if err != nil {
		return 0, err
	}

	return info.Size(), nil
}

func (filesystem *localFileSystem) FileMetaData(path string) (os.FileInfo, error) {
	exists, err := filesystem.FileExists(path)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrFileNotFound
	}

	return os.Stat(path)
}

func (filesystem *localFileSystem) IsFile(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}

		return false, err
	}

	return !info.IsDir(), nil
}

func (filesystem *localFileSystem) IsDirectory(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}

		return false, err
	}

	return info.IsDir(), nil
}
