package appeal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// File name prefixes, one per submission kind.
const (
	PrefixTask1 = "appeal_task1"
	PrefixTask2 = "appeal_task2"
	PrefixTask3 = "appeal_task3"
)

var (
	ErrNotFound  = errors.New("appeal not found")
	ErrInvalidID = errors.New("invalid appeal id")
)

var idRe = regexp.MustCompile(`^appeal_task[123]_[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

// Record identifies one stored appeal.
type Record struct {
	ID   string `json:"id"`
	File string `json:"file"`
}

// Store persists appeals as independent documents.
type Store interface {
	Save(ctx context.Context, prefix string, doc any) (Record, error)
	Get(ctx context.Context, id string) ([]byte, error)
	List(ctx context.Context) ([]Record, error)
}

// FileStore keeps one JSON file per appeal in a flat directory.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Save writes doc to {prefix}_{uuid}.json. The document is written to a
// temporary file first and renamed, so readers never observe a partial file.
func (s *FileStore) Save(ctx context.Context, prefix string, doc any) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return Record{}, fmt.Errorf("encode appeal: %w", err)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return Record{}, fmt.Errorf("create appeals dir: %w", err)
	}

	id := prefix + "_" + uuid.NewString()
	path := filepath.Join(s.dir, id+".json")

	tmp, err := os.CreateTemp(s.dir, id+".*.tmp")
	if err != nil {
		return Record{}, fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return Record{}, fmt.Errorf("write appeal: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return Record{}, fmt.Errorf("close appeal: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return Record{}, fmt.Errorf("rename appeal: %w", err)
	}

	return Record{ID: id, File: path}, nil
}

func (s *FileStore) Get(ctx context.Context, id string) ([]byte, error) {
	if !idRe.MatchString(id) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(s.dir, id+".json"))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("read appeal: %w", err)
	}
	return data, nil
}

// List returns every stored appeal sorted by file name. A missing directory
// means nothing has been saved yet.
func (s *FileStore) List(ctx context.Context) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, os.ErrNotExist) {
		return []Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list appeals: %w", err)
	}

	out := make([]Record, 0, len(entries))
	for _, e := range entries {
		id, ok := strings.CutSuffix(e.Name(), ".json")
		if e.IsDir() || !ok || !idRe.MatchString(id) {
			continue
		}
		out = append(out, Record{ID: id, File: filepath.Join(s.dir, e.Name())})
	}
	return out, nil
}
