// Package drafts persists in-progress form values in Redis so a session can
// be resumed with Controller.Reset.
package drafts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	backend "github.com/redis/go-redis/v9"
)

// ErrNotFound is returned when no draft is stored under the requested id.
var ErrNotFound = errors.New("drafts: draft not found")

// Draft is a stored value set.
type Draft struct {
	FormID  string         `json:"formId"`
	ID      string         `json:"id"`
	Values  map[string]any `json:"values"`
	SavedAt time.Time      `json:"savedAt"`
}

// Store keeps drafts as JSON strings, one key per draft, plus a sorted set
// per form indexing drafts by save time.
type Store struct {
	client backend.UniversalClient
	prefix string
	ttl    time.Duration
	now    func() time.Time
}

// Option configures the Store.
type Option func(*Store)

// WithTTL expires drafts after ttl. Zero keeps them forever.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// New connects to the Redis server at address.
func New(address, password string, db int, opts ...Option) *Store {
	return NewFromClient(backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	}), opts...)
}

// NewFromClient wraps an existing client.
func NewFromClient(client backend.UniversalClient, opts ...Option) *Store {
	s := &Store{
		client: client,
		prefix: "formstate:",
		now:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Draft keys and index keys live in separate namespaces so no form or draft
// id can make one collide with the other.
func (s *Store) key(formID, draftID string) string {
	return s.prefix + "draft:" + formID + ":" + draftID
}

func (s *Store) indexKey(formID string) string {
	return s.prefix + "index:" + formID
}

// Save stores values under (formID, draftID), replacing any previous draft.
func (s *Store) Save(ctx context.Context, formID, draftID string, values map[string]any) error {
	if strings.TrimSpace(formID) == "" || strings.TrimSpace(draftID) == "" {
		return errors.New("drafts: form id and draft id are required")
	}
	now := s.now()
	data, err := json.Marshal(Draft{FormID: formID, ID: draftID, Values: values, SavedAt: now.UTC()})
	if err != nil {
		return fmt.Errorf("drafts: encode draft: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.key(formID, draftID), data, s.ttl)
	pipe.ZAdd(ctx, s.indexKey(formID), backend.Z{Score: float64(now.Unix()), Member: draftID})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("drafts: save: %w", err)
	}
	return nil
}

// Load returns the draft stored under (formID, draftID).
func (s *Store) Load(ctx context.Context, formID, draftID string) (Draft, error) {
	raw, err := s.client.Get(ctx, s.key(formID, draftID)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return Draft{}, fmt.Errorf("%w: %s/%s", ErrNotFound, formID, draftID)
		}
		return Draft{}, fmt.Errorf("drafts: load: %w", err)
	}
	var d Draft
	if err := json.Unmarshal(raw, &d); err != nil {
		return Draft{}, fmt.Errorf("drafts: decode draft: %w", err)
	}
	return d, nil
}

// List returns the draft ids of formID, most recently saved first. Ids whose
// key has expired are pruned from the index.
func (s *Store) List(ctx context.Context, formID string) ([]string, error) {
	ids, err := s.client.ZRevRange(ctx, s.indexKey(formID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("drafts: list: %w", err)
	}
	out := make([]string, 0, len(ids))
	var stale []any
	for _, id := range ids {
		n, err := s.client.Exists(ctx, s.key(formID, id)).Result()
		if err != nil {
			return nil, fmt.Errorf("drafts: list: %w", err)
		}
		if n == 0 {
			stale = append(stale, id)
			continue
		}
		out = append(out, id)
	}
	if len(stale) > 0 {
		if err := s.client.ZRem(ctx, s.indexKey(formID), stale...).Err(); err != nil {
			return nil, fmt.Errorf("drafts: prune index: %w", err)
		}
	}
	return out, nil
}

// Delete removes a draft. Deleting a missing draft is not an error.
func (s *Store) Delete(ctx context.Context, formID, draftID string) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.key(formID, draftID))
	pipe.ZRem(ctx, s.indexKey(formID), draftID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("drafts: delete: %w", err)
	}
	return nil
}
