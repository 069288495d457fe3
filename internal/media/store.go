package media

import (
	"bytes"
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/afrigis/user-feedback/internal/model"
	"github.com/afrigis/user-feedback/internal/storage"
	"github.com/oklog/ulid/v2"
)

// Naming selects how screenshot filenames are generated.
type Naming string

const (
	// NamingMinute names files by creation minute only. Two submissions in the
	// same minute write to the same file and the later one wins.
	NamingMinute Naming = "minute"
	// NamingUnique appends a ULID so every submission gets its own file.
	NamingUnique Naming = "unique"
)

// ParseNaming validates a naming policy string.
func ParseNaming(s string) (Naming, error) {
	switch Naming(strings.ToLower(strings.TrimSpace(s))) {
	case "", NamingUnique:
		return NamingUnique, nil
	case NamingMinute:
		return NamingMinute, nil
	default:
		return "", fmt.Errorf("media: unknown naming policy %q", s)
	}
}

const (
	DefaultPrefix = "feedback-"
	contentType   = "image/png"
	minuteLayout  = "2006-01-02-15-04"
)

// Store writes decoded screenshots through a storage backend.
type Store struct {
	backend storage.Storage
	prefix  string
	naming  Naming
	now     func() time.Time

	mu      sync.Mutex
	entropy io.Reader
}

// Option configures a Store.
type Option func(*Store)

// WithPrefix overrides the filename prefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// WithNaming sets the filename policy.
func WithNaming(n Naming) Option {
	return func(s *Store) { s.naming = n }
}

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore creates a Store backed by backend.
func NewStore(backend storage.Storage, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		prefix:  DefaultPrefix,
		naming:  NamingUnique,
		now:     time.Now,
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Filename returns the name a screenshot created at t would be stored under.
func (s *Store) Filename(t time.Time) string {
	stamp := t.Format(minuteLayout)
	if s.naming == NamingMinute {
		return s.prefix + stamp + ".png"
	}
	s.mu.Lock()
	id := ulid.MustNew(ulid.Timestamp(t), s.entropy)
	s.mu.Unlock()
	return s.prefix + stamp + "-" + strings.ToLower(id.String()) + ".png"
}

// Save writes data and returns where it was stored. Every failure wraps
// ErrStorageUnavailable.
func (s *Store) Save(ctx context.Context, data []byte) (*model.StoredImage, error) {
	created := s.now()
	name := s.Filename(created)

	loc, err := s.backend.Save(ctx, name, bytes.NewReader(data), contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return &model.StoredImage{Path: loc, CreatedAt: created}, nil
}

// Open reads back a stored screenshot, used for mail attachments.
func (s *Store) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	rc, err := s.backend.Open(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return rc, nil
}
