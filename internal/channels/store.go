package channels

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"sync"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // postgres driver
)

// ErrChannelNotFound is returned when a channel id is not in the directory.
var ErrChannelNotFound = errors.New("channel not found")

// Store persists the channel directory.
type Store interface {
	UpsertAll(ctx context.Context, chans []Channel) error
	List(ctx context.Context) ([]Channel, error)
	Get(ctx context.Context, id string) (Channel, error)
}

const channelSchema = `
CREATE TABLE IF NOT EXISTS channels (
	id          TEXT PRIMARY KEY,
	handle      TEXT NOT NULL DEFAULT '',
	name        TEXT NOT NULL DEFAULT '',
	category    TEXT NOT NULL DEFAULT '',
	subscribers BIGINT NOT NULL DEFAULT 0,
	videos      BIGINT NOT NULL DEFAULT 0,
	scraped_at  TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// SQLStore backs the channel directory with postgres.
type SQLStore struct {
	db      *sqlx.DB
	builder sq.StatementBuilderType
}

// NewSQLStore connects to postgres at dsn and ensures the schema exists.
func NewSQLStore(ctx context.Context, dsn string) (*SQLStore, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, channelSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure channels schema: %w", err)
	}
	return &SQLStore{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}, nil
}

// UpsertAll writes the given channels, replacing stale statistics by id.
func (s *SQLStore) UpsertAll(ctx context.Context, chans []Channel) error {
	if len(chans) == 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	for _, ch := range chans {
		query, args, err := s.builder.
			Insert("channels").
			Columns("id", "handle", "name", "category", "subscribers", "videos", "scraped_at").
			Values(ch.ID, ch.Handle, ch.Name, ch.Category, ch.Subscribers, ch.Videos, ch.ScrapedAt).
			Suffix(`ON CONFLICT (id) DO UPDATE SET
				handle = EXCLUDED.handle,
				name = EXCLUDED.name,
				category = EXCLUDED.category,
				subscribers = EXCLUDED.subscribers,
				videos = EXCLUDED.videos,
				scraped_at = EXCLUDED.scraped_at`).
			ToSql()
		if err != nil {
			return fmt.Errorf("build upsert for %q: %w", ch.ID, err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert channel %q: %w", ch.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert: %w", err)
	}
	return nil
}

// List returns all channels ordered by subscriber count.
func (s *SQLStore) List(ctx context.Context) ([]Channel, error) {
	query, args, err := s.builder.
		Select("id", "handle", "name", "category", "subscribers", "videos", "scraped_at").
		From("channels").
		OrderBy("subscribers DESC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list: %w", err)
	}

	var chans []Channel
	if err := s.db.SelectContext(ctx, &chans, query, args...); err != nil {
		return nil, fmt.Errorf("list channels: %w", err)
	}
	return chans, nil
}

// Get returns the channel with the given id.
func (s *SQLStore) Get(ctx context.Context, id string) (Channel, error) {
	query, args, err := s.builder.
		Select("id", "handle", "name", "category", "subscribers", "videos", "scraped_at").
		From("channels").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return Channel{}, fmt.Errorf("build get: %w", err)
	}

	var ch Channel
	if err := s.db.GetContext(ctx, &ch, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Channel{}, ErrChannelNotFound
		}
		return Channel{}, fmt.Errorf("get channel %q: %w", id, err)
	}
	return ch, nil
}

// Close releases the database connection pool.
func (s *SQLStore) Close() error { return s.db.Close() }

// MemoryStore is the in-process Store used when no postgres DSN is configured.
type MemoryStore struct {
	mu    sync.RWMutex
	chans map[string]Channel
}

// NewMemoryStore builds an empty in-process channel store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{chans: make(map[string]Channel)}
}

// UpsertAll writes the given channels by id.
func (s *MemoryStore) UpsertAll(_ context.Context, chans []Channel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range chans {
		if ch.ID == "" {
			continue
		}
		s.chans[ch.ID] = ch
	}
	return nil
}

// List returns all channels ordered by subscriber count.
func (s *MemoryStore) List(_ context.Context) ([]Channel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Channel, 0, len(s.chans))
	for _, ch := range s.chans {
		out = append(out, ch)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Subscribers != out[j].Subscribers {
			return out[i].Subscribers > out[j].Subscribers
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Get returns the channel with the given id.
func (s *MemoryStore) Get(_ context.Context, id string) (Channel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ch, ok := s.chans[id]
	if !ok {
		return Channel{}, ErrChannelNotFound
	}
	return ch, nil
}
