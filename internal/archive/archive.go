// Package archive reads the compressed mission container (.miz) produced by the mission editor.
package archive

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sort"

	"github.com/klauspost/compress/zip"
)

// Entry names inside a mission archive.
const (
	MissionEntry    = "mission"
	DictionaryEntry = "l10n/DEFAULT/dictionary"
)

var (
	// ErrNotFound is returned when the archive path does not exist.
	ErrNotFound = errors.New("archive not found")
	// ErrCorruptArchive is returned when the file is not a readable zip container or a
	// required entry is missing.
	ErrCorruptArchive = errors.New("corrupt mission archive")
)

// Extract returns the text of the mission and dictionary entries of the archive at path.
func Extract(path string) (missionText, dictionaryText string, err error) {
	entries, err := ExtractEntries(path, MissionEntry, DictionaryEntry)
	if err != nil {
		return "", "", err
	}
	return entries[MissionEntry], entries[DictionaryEntry], nil
}

// ExtractEntries returns the contents of every named entry. All names must be present.
func ExtractEntries(path string, names ...string) (map[string]string, error) {
	r, err := open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	files := make(map[string]*zip.File, len(r.File))
	for _, f := range r.File {
		files[f.Name] = f
	}

	out := make(map[string]string, len(names))
	for _, name := range names {
		f, ok := files[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s: missing entry %q", ErrCorruptArchive, path, name)
		}
		data, err := readFile(f)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: reading %q: %v", ErrCorruptArchive, path, name, err)
		}
		out[name] = string(data)
	}
	return out, nil
}

// List returns the sorted entry names of the archive.
func List(path string) ([]string, error) {
	r, err := open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	names := make([]string, 0, len(r.File))
	for _, f := range r.File {
		names = append(names, f.Name)
	}
	sort.Strings(names)
	return names, nil
}

func open(path string) (*zip.ReadCloser, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	r, err := zip.OpenReader(path)
	if err != nil && !errors.Is(err, zip.ErrInsecurePath) {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptArchive, path, err)
	}
	return r, nil
}

func readFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
