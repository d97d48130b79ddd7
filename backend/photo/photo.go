// Package photo holds the selected report photo and the helpers that read
// metadata from it or derive a preview.
package photo

import (
	"fmt"
	"os"
	"path/filepath"
)

// Photo is the image attached to a report draft.
type Photo struct {
	Name string
	Data []byte
}

func Load(path string) (Photo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Photo{}, fmt.Errorf("failed to read photo: %w", err)
	}
	return Photo{Name: filepath.Base(path), Data: data}, nil
}

// Empty reports whether no photo was selected.
func (p Photo) Empty() bool {
	return p.Name == "" && len(p.Data) == 0
}
