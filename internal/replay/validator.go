package replay

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const (
	// Extension is the required replay file suffix, compared case-insensitively.
	Extension = ".StormReplay"

	MinFileSize int64 = 1000
	MaxFileSize int64 = 50 * 1024 * 1024
)

// ValidateFile checks that path names an existing replay of acceptable size
// and returns its size. It only stats the file.
func ValidateFile(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, &Error{Kind: KindNotFound, Message: "replay file not found", Err: err}
		}
		return 0, &Error{Kind: KindNotFound, Message: "replay file could not be accessed", Err: err}
	}
	if info.IsDir() {
		return 0, &Error{Kind: KindNotFound, Message: "replay path is a directory"}
	}

	if !strings.EqualFold(filepath.Ext(path), Extension) {
		return 0, &Error{
			Kind:    KindInvalidFormat,
			Message: fmt.Sprintf("invalid file format: only %s files are supported", Extension),
		}
	}

	size := info.Size()
	if size < MinFileSize {
		return size, &Error{
			Kind:    KindTooSmall,
			Message: fmt.Sprintf("replay file is too small (%d bytes), possibly corrupted", size),
		}
	}
	if size > MaxFileSize {
		return size, &Error{
			Kind:    KindTooLarge,
			Message: fmt.Sprintf("replay file is too large (%d bytes, limit %d)", size, MaxFileSize),
		}
	}
	return size, nil
}
