package ioutils

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// tempPrefix marks in-flight artifacts. Files carrying it are never treated
// as finished output.
const tempPrefix = ".part-"

// maxNameBytes is the common file name limit of Linux and macOS file systems.
const maxNameBytes = 255

// Exists reports whether path exists.
//
// A missing file is not an error. Any other stat failure (permission denied,
// I/O error) is returned so callers never act on an ambiguous answer.
//
// Example:
//
//	ok, err := Exists("/music/.mp3/abc.flac")
//	if err != nil {
//	    return err
//	}
//	if ok {
//	    // nothing to do
//	}
func Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// maxTempSuffix bounds the part of the final name carried into a temporary
// name, leaving room for the prefix and the random token.
const maxTempSuffix = 200

// tempFile reserves a uniquely named in-flight sibling of path.
//
// The final base name ends the temporary name so tools that infer the
// container from the extension (ffmpeg) keep working on it. Every call gets
// its own file, so concurrent writers of one path never share a temp file.
//
// Example:
//
//	tempFile("/music/A/B/003 Song.flac") // "/music/A/B/.part-1234567-003 Song.flac"
func tempFile(path string) (string, error) {
	suffix := filepath.Base(path)
	if len(suffix) > maxTempSuffix {
		suffix = filepath.Ext(suffix)
	}
	file, err := os.CreateTemp(filepath.Dir(path), tempPrefix+"*-"+suffix)
	if err != nil {
		return "", err
	}
	name := file.Name()
	if err := file.Close(); err != nil {
		_ = os.Remove(name)
		return "", err
	}
	return name, nil
}

// WriteAtomic creates path by letting write fill a fresh temporary sibling
// and then renaming it into place. write may truncate or replace tmp.
//
// If write fails the temporary file is removed and path is left untouched. A
// crash in the middle of write therefore never leaves a truncated file under
// the final name. When several writers race for one path, each renames its
// own complete file; a rename that fails while path exists counts as success.
func WriteAtomic(path string, write func(tmp string) error) error {
	tmp, err := tempFile(path)
	if err != nil {
		return err
	}
	if err := write(tmp); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Chmod(tmp, 0644); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		if ok, _ := Exists(path); ok {
			return nil
		}
		return fmt.Errorf("rename %s: %w", filepath.Base(tmp), err)
	}
	return nil
}

// WriteStream streams r into path atomically and returns the number of bytes
// written.
func WriteStream(path string, r io.Reader) (int64, error) {
	var written int64
	err := WriteAtomic(path, func(tmp string) error {
		file, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
		if err != nil {
			return err
		}
		n, err := io.Copy(file, r)
		written = n
		if err != nil {
			_ = file.Close()
			return err
		}
		return file.Close()
	})
	return written, err
}

// CopyFile copies a file from source to destination.
//
// The copy goes through WriteAtomic, so several workers may race to create
// the same destination and every reader still sees either nothing or a
// complete file.
//
// Parameters:
//   - ctx: Context for cancellation, checked before the copy starts
//   - src: Source file path (must exist)
//   - dst: Destination file path (replaced if it exists)
//
// Example:
//
//	err := CopyFile(ctx, "/music/.cover/abc_500.jpeg", "/music/A/B/cover.jpeg")
func CopyFile(ctx context.Context, src, dst string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	_, err = WriteStream(dst, sourceFile)
	return err
}

// LinkOrCopy makes dst refer to the content of src.
//
// A hard link is tried first since it costs no space; when the file system
// refuses (cross-device, unsupported) the file is copied instead. An existing
// dst counts as success.
func LinkOrCopy(ctx context.Context, src, dst string) error {
	err := os.Link(src, dst)
	if err == nil || errors.Is(err, fs.ErrExist) {
		return nil
	}
	return CopyFile(ctx, src, dst)
}

// EnsureDir creates a directory and all parent directories if they don't exist.
//
// Directories are created with mode 0755 (rwxr-xr-x).
// If the directory already exists, no error is returned.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}

var (
	illegalChars  = regexp.MustCompile(`[/?<>\\:*|"]`)
	controlChars  = regexp.MustCompile(`[\x00-\x1f\x80-\x9f]`)
	reservedNames = regexp.MustCompile(`^\.+$`)
	multiSpace    = regexp.MustCompile(`\s+`)
	trailingDots  = regexp.MustCompile(`\.+$`)
)

// SanitizeFileName removes characters that are invalid in file/folder names.
//
// The following transformations are applied:
//   - Unicode is normalized to NFC so visually equal names map to one file
//   - Invalid characters (/?<>\:*|") and control characters are removed
//   - Names made only of dots ("." and "..") become empty
//   - Multiple whitespace → single space, surrounding whitespace trimmed
//   - Trailing dots are removed
//   - The result is truncated to 255 bytes on a rune boundary
//
// Example:
//
//	SanitizeFileName("A/C")                   // "AC"
//	SanitizeFileName("A/C Hits 003 Song.flac") // "AC Hits 003 Song.flac"
//	SanitizeFileName("..")                    // ""
func SanitizeFileName(name string) string {
	name = norm.NFC.String(name)
	name = illegalChars.ReplaceAllString(name, "")
	name = controlChars.ReplaceAllString(name, "")
	name = reservedNames.ReplaceAllString(name, "")
	name = multiSpace.ReplaceAllString(name, " ")
	name = strings.TrimSpace(name)
	name = trailingDots.ReplaceAllString(name, "")
	return truncateBytes(name, maxNameBytes)
}

func truncateBytes(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
