package jsonfile

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/goccy/go-json"

	"shopfront/internal/notify"
	"shopfront/internal/repository"
)

type Repo struct {
	Path string
	Log  *slog.Logger

	// mu serializes read-modify-write of the viewed record within this process.
	mu sync.Mutex
}

func New(path string, log *slog.Logger) *Repo {
	if log == nil {
		log = slog.Default()
	}
	return &Repo{Path: path, Log: log}
}

func (r *Repo) Save(ctx context.Context, res repository.CatalogResult) error {
	if err := r.saveAny(ctx, res); err != nil {
		return err
	}
	r.Log.Info("json saved", "path", r.Path, "count", res.Count)
	return nil
}

// Load reads the viewed record. A missing file is an empty record.
func (r *Repo) Load(ctx context.Context) (notify.Viewed, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load(ctx)
}

func (r *Repo) MarkOrder(ctx context.Context, id string) error {
	return r.update(ctx, func(v *notify.Viewed) { v.AddOrder(id) })
}

func (r *Repo) MarkProduct(ctx context.Context, id string) error {
	return r.update(ctx, func(v *notify.Viewed) { v.AddProduct(id) })
}

// update is a plain read-modify-write. Another process writing the same file
// can overwrite it; the last writer wins. An unchanged record is not rewritten.
func (r *Repo) update(ctx context.Context, fn func(*notify.Viewed)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	v, err := r.load(ctx)
	if err != nil {
		return err
	}
	before := v.Clone()
	fn(&v)
	if v.Equal(before) {
		return nil
	}
	return r.saveAny(ctx, v)
}

func (r *Repo) load(ctx context.Context) (notify.Viewed, error) {
	if err := ctx.Err(); err != nil {
		return notify.Viewed{}, err
	}
	if r.Path == "" {
		return notify.Viewed{}, fmt.Errorf("jsonfile repo: empty path")
	}

	b, err := os.ReadFile(r.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return notify.NewViewed(), nil
	}
	if err != nil {
		return notify.Viewed{}, err
	}

	v := notify.NewViewed()
	if len(b) == 0 {
		return v, nil
	}
	if err := json.Unmarshal(b, &v); err != nil {
		return notify.Viewed{}, fmt.Errorf("jsonfile repo: decode %s: %w", r.Path, err)
	}
	return v, nil
}

func (r *Repo) saveAny(ctx context.Context, v any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if r.Path == "" {
		return fmt.Errorf("jsonfile repo: empty path")
	}

	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')

	dir := filepath.Dir(r.Path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	tmp := r.Path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, r.Path); err != nil {
		_ = os.Remove(tmp)
		return err
	}

	return nil
}
