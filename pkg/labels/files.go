package labels

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var unsafeKeyChars = regexp.MustCompile(`[^a-zA-Z0-9-]`)

// SortFile sorts the PDF at path and writes the result to <path>_sorted.<ext>.
func (s *Sorter) SortFile(path string, mode Mode, strip bool) (*Result, error) {
	data, err := readSource(path)
	if err != nil {
		return nil, err
	}

	res, err := s.Sort(data, mode, strip)
	if err != nil {
		return nil, err
	}

	out := DerivedPath(path, "_sorted")
	if err := writeOutput(out, res.Output); err != nil {
		return nil, err
	}

	res.OutputPath = out
	return res, nil
}

// ExportFile writes the given pages of the PDF at path to a new file beside
// it, named from key, and returns the new file's path.
func (s *Sorter) ExportFile(path, key string, pages []int) (string, error) {
	if len(pages) == 0 {
		return "", fmt.Errorf("%w: no pages selected", ErrInvalidInput)
	}

	data, err := readSource(path)
	if err != nil {
		return "", err
	}

	out, err := s.Export(data, pages)
	if err != nil {
		return "", err
	}

	dest := filepath.Join(filepath.Dir(path), ExportName(key))
	if err := writeOutput(dest, out); err != nil {
		return "", err
	}
	return dest, nil
}

// CropFile crops every page of the PDF at path and writes <path>_cropped.<ext>.
func (s *Sorter) CropFile(path string) (string, error) {
	data, err := readSource(path)
	if err != nil {
		return "", err
	}

	out, err := s.Crop(data)
	if err != nil {
		return "", err
	}

	dest := DerivedPath(path, "_cropped")
	if err := writeOutput(dest, out); err != nil {
		return "", err
	}
	return dest, nil
}

// DerivedPath inserts suffix between a path's base name and extension.
func DerivedPath(path, suffix string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + suffix + ext
}

// ExportName returns a unique file name for a group export.
func ExportName(key string) string {
	return fmt.Sprintf("%s_%s-labels.pdf", uuid.NewString(), SanitizeKey(key))
}

// SanitizeKey replaces every character other than ASCII letters, digits,
// and hyphens with a hyphen.
func SanitizeKey(key string) string {
	return unsafeKeyChars.ReplaceAllString(key, "-")
}

func readSource(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrIO, path, err)
	}
	return data, nil
}

func writeOutput(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("%w: write %s: %w", ErrIO, path, err)
	}
	return nil
}
