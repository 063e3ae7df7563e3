// Package badgerstore keeps the viewed notification ids in BadgerDB, one key
// per id, so concurrent marks never overwrite each other.
package badgerstore

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	"shopfront/internal/notify"
)

const (
	orderPrefix   = "viewed:order:"
	productPrefix = "viewed:product:"
)

type Store struct {
	db  *badger.DB
	log *slog.Logger
}

// Open opens (or creates) a database at dir. An empty dir opens an
// in-memory database.
func Open(dir string, log *slog.Logger) (*Store, error) {
	if log == nil {
		log = slog.Default()
	}
	opts := badger.DefaultOptions(dir)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger %q: %w", dir, err)
	}
	log.Debug("badger viewed store opened", "dir", dir, "in_memory", dir == "")
	return &Store{db: db, log: log}, nil
}

func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close badger: %w", err)
	}
	s.log.Debug("badger viewed store closed")
	return nil
}

func (s *Store) MarkOrder(ctx context.Context, id string) error {
	return s.put(ctx, orderPrefix+id)
}

func (s *Store) MarkProduct(ctx context.Context, id string) error {
	return s.put(ctx, productPrefix+id)
}

func (s *Store) put(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), nil)
	})
	if err != nil {
		return fmt.Errorf("badger set %s: %w", key, err)
	}
	return nil
}

func (s *Store) Load(ctx context.Context) (notify.Viewed, error) {
	if err := ctx.Err(); err != nil {
		return notify.Viewed{}, err
	}

	v := notify.NewViewed()
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for _, p := range []struct {
			prefix string
			add    func(string)
		}{
			{orderPrefix, v.AddOrder},
			{productPrefix, v.AddProduct},
		} {
			prefix := []byte(p.prefix)
			for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
				p.add(string(it.Item().Key()[len(prefix):]))
			}
		}
		return nil
	})
	if err != nil {
		return notify.Viewed{}, fmt.Errorf("badger load viewed: %w", err)
	}
	return v, nil
}
