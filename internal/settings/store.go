package settings

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/ynt-app/youtube-no-translation/internal/resolver"
	"github.com/ynt-app/youtube-no-translation/pkg/log"
)

const settingsKey = "settings"

// Store owns the persisted settings record. The engine core reads the
// in-memory snapshot; writes go through Update/ApplyToggle, which persist
// and then notify subscribers.
type Store struct {
	db *sql.DB

	mu      sync.RWMutex
	current Settings
	subs    map[int]func(Settings)
	nextSub int

	logger *log.Logger
}

func NewStore(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("db path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	store := &Store{
		db:     db,
		subs:   make(map[int]func(Settings)),
		logger: log.ForChannel(log.ChannelCore),
	}
	if err := store.init(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) init(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "PRAGMA journal_mode = WAL;"); err != nil {
		return fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, "PRAGMA busy_timeout = 5000;"); err != nil {
		return fmt.Errorf("set busy timeout: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);`); err != nil {
		return fmt.Errorf("create kv table: %w", err)
	}

	loaded, err := s.load(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		// First install: write the defaults once.
		loaded = Defaults()
		if err := s.persist(ctx, loaded); err != nil {
			return err
		}
		s.logger.Info("settings initialized with defaults")
	} else if err != nil {
		return err
	}

	s.mu.Lock()
	s.current = loaded
	s.mu.Unlock()
	return nil
}

func (s *Store) load(ctx context.Context) (Settings, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM kv WHERE key = ?", settingsKey).Scan(&raw)
	if err != nil {
		return Settings{}, err
	}
	var loaded Settings
	if err := json.Unmarshal([]byte(raw), &loaded); err != nil {
		return Settings{}, fmt.Errorf("decode settings record: %w", err)
	}
	if loaded.AudioLanguage == "" {
		loaded.AudioLanguage = OriginalLanguage
	}
	if loaded.SubtitlesLanguage == "" {
		loaded.SubtitlesLanguage = OriginalLanguage
	}
	return loaded, nil
}

func (s *Store) persist(ctx context.Context, val Settings) error {
	raw, err := json.Marshal(val)
	if err != nil {
		return fmt.Errorf("encode settings record: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO kv (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		settingsKey, string(raw))
	if err != nil {
		return fmt.Errorf("persist settings: %w", err)
	}
	return nil
}

// Get returns the current snapshot.
func (s *Store) Get() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Enabled is a convenience for per-feature checks.
func (s *Store) Enabled(f resolver.Feature) bool {
	return s.Get().Enabled(f)
}

// Update mutates the record, validates, persists and notifies.
func (s *Store) Update(ctx context.Context, mutate func(*Settings)) (Settings, error) {
	s.mu.Lock()
	next := s.current
	mutate(&next)
	if err := next.Validate(); err != nil {
		s.mu.Unlock()
		return Settings{}, err
	}
	if err := s.persist(ctx, next); err != nil {
		s.mu.Unlock()
		return Settings{}, err
	}
	s.current = next
	subs := make([]func(Settings), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(next)
	}
	return next, nil
}

// ApplyToggle applies a validated toggle message.
func (s *Store) ApplyToggle(ctx context.Context, msg ToggleMessage) (Settings, error) {
	return s.Update(ctx, func(next *Settings) {
		enabled := msg.Enabled()
		switch msg.Feature {
		case "titles":
			next.TitleTranslation = enabled
		case "audio":
			next.AudioTranslation = enabled
		case "description":
			next.DescriptionTranslation = enabled
		case "subtitles":
			next.SubtitlesTranslation = enabled
		}
	})
}

// Subscribe registers fn for settings changes. The returned cancel func
// removes it.
func (s *Store) Subscribe(fn func(Settings)) (cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSub++
	id := s.nextSub
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}
