// Package prefs persists small user choices between runs.
package prefs

import (
	"encoding/json"
	"os"
	"path/filepath"
)

const selectionFile = "selection.json"

// Selection is the last filter choice made on the filter panel.
type Selection struct {
	RangeMonths  int    `json:"range_months"`
	CurrencyCode string `json:"currency_code"`
}

// File stores prefs as JSON files in Dir.
type File struct {
	Dir string
}

// Default is the prefs location in the user config directory.
func Default() (*File, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return nil, err
	}
	return &File{Dir: filepath.Join(dir, "fireflymoney")}, nil
}

func (f *File) path() (string, error) {
	if err := os.MkdirAll(f.Dir, 0o755); err != nil {
		return "", err
	}
	return filepath.Join(f.Dir, selectionFile), nil
}

func (f *File) SaveSelection(s Selection) error {
	path, err := f.path()
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// LoadSelection returns the saved selection; ok is false when none exists.
func (f *File) LoadSelection() (Selection, bool, error) {
	path, err := f.path()
	if err != nil {
		return Selection{}, false, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Selection{}, false, nil
		}
		return Selection{}, false, err
	}
	var s Selection
	if err := json.Unmarshal(data, &s); err != nil {
		return Selection{}, false, err
	}
	return s, true, nil
}
