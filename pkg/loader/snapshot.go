// Package loader reads entity collections from a snapshot directory,
// one JSON file per collection (clients.json, sites.json, ...). A
// snapshot is what you get from dumping the service responses to disk;
// it lets the dashboard run fully offline.
package loader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"

	"github.com/vanderheijden86/suiteview/pkg/model"
)

// Snapshot serves collections from a directory of JSON files. Missing
// files read as empty collections so partial dumps still load.
type Snapshot struct {
	dir string
}

// Open validates that the snapshot directory exists.
func Open(dir string) (*Snapshot, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("open snapshot: %s is not a directory", dir)
	}
	return &Snapshot{dir: dir}, nil
}

// Dir returns the snapshot directory path.
func (s *Snapshot) Dir() string { return s.dir }

// List reads one collection file. Files may hold either a bare JSON
// array or the service's {"objects": [...]} envelope.
func (s *Snapshot) List(_ context.Context, t model.EntityType) ([]model.Record, error) {
	path := filepath.Join(s.dir, t.Collection()+".json")
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return []model.Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	records, err := decodeCollection(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return records, nil
}

// Load reads every collection eagerly.
func (s *Snapshot) Load(ctx context.Context) (model.Collections, error) {
	collections := make(model.Collections)
	for _, t := range model.AllTypes() {
		records, err := s.List(ctx, t)
		if err != nil {
			return nil, err
		}
		collections[t] = records
	}
	return collections, nil
}

func decodeCollection(data []byte) ([]model.Record, error) {
	var records []model.Record
	if err := json.Unmarshal(data, &records); err == nil {
		return records, nil
	}

	var envelope struct {
		Objects []model.Record `json:"objects"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, err
	}
	if envelope.Objects == nil {
		return []model.Record{}, nil
	}
	return envelope.Objects, nil
}
