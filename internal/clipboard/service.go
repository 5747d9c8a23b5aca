package clipboard

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/illarion/clipseal/internal/envelope"
	"github.com/illarion/clipseal/internal/logging"
	"github.com/illarion/clipseal/internal/storage"
)

var log = logging.For("clipboard")

// Sealer seals and opens envelopes. Seal wipes the plaintext it is given.
type Sealer interface {
	Seal(plaintext []byte) (*envelope.Envelope, error)
	Open(env *envelope.Envelope) (string, error)
}

// History records sealed updates
type History interface {
	Append(rec *storage.Record) error
	Prune(limit int) (int, error)
}

// Service publishes and receives clipboard updates
type Service struct {
	codec  Sealer
	origin string

	history History
	limit   int
	now     func() time.Time

	mu     sync.Mutex
	lastID string
}

// Option configures a Service
type Option func(*Service)

// WithHistory records every published and accepted update, keeping the newest limit
func WithHistory(h History, limit int) Option {
	return func(s *Service) {
		s.history = h
		s.limit = limit
	}
}

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a Service that tags its updates with origin
func NewService(codec Sealer, origin string, opts ...Option) *Service {
	s := &Service{
		codec:  codec,
		origin: origin,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Publish seals content into a new update
func (s *Service) Publish(content string) (*SealedUpdate, error) {
	env, err := s.codec.Seal([]byte(content))
	if err != nil {
		return nil, err
	}

	u := &SealedUpdate{
		ID:        uuid.NewString(),
		Timestamp: s.now().UnixMilli(),
		Origin:    s.origin,
		Payload:   *env,
	}

	s.mu.Lock()
	s.lastID = u.ID
	s.mu.Unlock()

	s.record(u)
	log.WithFields(logging.Operation("publish", "ok", logrus.Fields{"id": u.ID, "size": len(content)})).Debug("clipboard update published")
	return u, nil
}

// Receive opens a sealed update. It reports duplicate=true, and opens
// nothing, when the update is the one seen last.
func (s *Service) Receive(u *SealedUpdate) (update *Update, duplicate bool, err error) {
	if u == nil {
		return nil, false, fmt.Errorf("%w: missing update", ErrInvalidUpdate)
	}
	if _, err := uuid.Parse(u.ID); err != nil {
		return nil, false, fmt.Errorf("%w: bad id", ErrInvalidUpdate)
	}

	// the id is claimed before opening and released if opening fails
	s.mu.Lock()
	if u.ID == s.lastID {
		s.mu.Unlock()
		log.WithField("id", u.ID).Debug("ignoring duplicate clipboard update")
		return nil, true, nil
	}
	prev := s.lastID
	s.lastID = u.ID
	s.mu.Unlock()

	content, err := s.codec.Open(&u.Payload)
	if err != nil {
		s.mu.Lock()
		if s.lastID == u.ID {
			s.lastID = prev
		}
		s.mu.Unlock()
		return nil, false, err
	}

	s.record(u)
	log.WithFields(logrus.Fields{"id": u.ID, "origin": u.Origin}).Info("clipboard update received")

	return &Update{
		Type:      TypeUpdate,
		ID:        u.ID,
		Timestamp: u.Timestamp,
		Origin:    u.Origin,
		Content:   content,
	}, false, nil
}

// Reset forgets the last seen update
func (s *Service) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastID = ""
}

// record appends to history. History failures are logged, not returned:
// the update itself has already succeeded.
func (s *Service) record(u *SealedUpdate) {
	if s.history == nil {
		return
	}
	if err := s.history.Append(u.record()); err != nil {
		log.WithError(err).Warn("failed to record clipboard history")
		return
	}
	if _, err := s.history.Prune(s.limit); err != nil {
		log.WithError(err).Warn("failed to prune clipboard history")
	}
}
