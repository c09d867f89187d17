package project

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jesusq18/DroneShow-Demo/internal/show"
)

const defaultKey = "droneshow:projects"

// Record is a persisted project: an immutable snapshot of the request plus
// the final artifacts. Created on explicit save, never mutated.
type Record struct {
	ID        string       `json:"id"`
	CreatedAt time.Time    `json:"created_at"`
	Request   show.Request `json:"request"`
	ImageData string       `json:"image_data,omitempty"`
	ImageMime string       `json:"image_mime,omitempty"`
	VideoData string       `json:"video_data,omitempty"`
	VideoMime string       `json:"video_mime,omitempty"`
	VideoURI  string       `json:"video_uri,omitempty"`
	// Degraded marks a record saved without its media payloads after a
	// storage capacity failure.
	Degraded bool `json:"degraded,omitempty"`
}

// Commands is the slice of the redis client the store uses; narrowed so
// tests can substitute a failing implementation.
type Commands interface {
	HSet(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd
}

type Options struct {
	Client Commands
	Key    string
	Logger *slog.Logger
}

type Store struct {
	client Commands
	key    string
	logger *slog.Logger
}

func NewStore(opts Options) *Store {
	key := strings.TrimSpace(opts.Key)
	if key == "" {
		key = defaultKey
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Store{
		client: opts.Client,
		key:    key,
		logger: logger,
	}
}

// Save persists a record. On a storage capacity failure it retries once with
// the media payloads stripped, so the save still lands; the caller's
// in-memory record is untouched either way. The persisted form is returned.
func (s *Store) Save(ctx context.Context, rec Record) (Record, error) {
	if err := s.write(ctx, rec); err != nil {
		if !isCapacityError(err) {
			return Record{}, fmt.Errorf("save project: %w", err)
		}

		s.logger.Warn("project store over capacity, saving degraded record", "id", rec.ID, "err", err)

		degraded := rec
		degraded.ImageData = ""
		degraded.VideoData = ""
		degraded.Degraded = true
		if err := s.write(ctx, degraded); err != nil {
			return Record{}, fmt.Errorf("save degraded project: %w", err)
		}
		return degraded, nil
	}
	return rec, nil
}

// List loads every saved record, newest first. Corrupt entries are skipped
// with a warning rather than failing the whole gallery.
func (s *Store) List(ctx context.Context) ([]Record, error) {
	raw, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		return nil, fmt.Errorf("load projects: %w", err)
	}

	out := make([]Record, 0, len(raw))
	for id, value := range raw {
		var rec Record
		if err := json.Unmarshal([]byte(value), &rec); err != nil {
			s.logger.Warn("skipping corrupt project record", "id", id, "err", err)
			continue
		}
		out = append(out, rec)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) write(ctx context.Context, rec Record) error {
	if s.client == nil {
		return errors.New("redis client is nil")
	}

	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	return s.client.HSet(ctx, s.key, rec.ID, payload).Err()
}

func isCapacityError(err error) bool {
	if err == nil {
		return false
	}
	message := strings.ToLower(err.Error())
	return strings.Contains(message, "oom") || strings.Contains(message, "maxmemory")
}
