package db

import (
	"context"
	"errors"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var ErrNoSession = errors.New("no state session in request context")

// Session is one unit of work (one inbound request). The remote database is
// fetched at most once per session, on first use
type Session struct {
	store *Store
	id    uint64

	mu        sync.Mutex
	fetched   bool
	dirty     bool
	divergent bool
	products  map[uint32]bool
}

func (s *Store) NewSession() *Session {
	return &Session{
		store:    s,
		id:       s.sessionSeq.Add(1),
		products: map[uint32]bool{},
	}
}

func (u *Session) ensureFetched(ctx context.Context) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.fetched {
		return nil
	}
	if err := u.store.fetch(ctx); err != nil {
		return err
	}
	u.fetched = true
	return nil
}

// Read runs fn in a read transaction. Nothing is published
func (u *Session) Read(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if err := u.ensureFetched(ctx); err != nil {
		return err
	}
	s := u.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.conn.WithContext(ctx).Transaction(fn)
}

// Write runs fn in a transaction, flushes the commit to disk and, in snapshot mode,
// uploads the whole database before returning. A failed upload is logged and marks
// the session divergent but is not returned: the local commit stands
func (u *Session) Write(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if err := u.ensureFetched(ctx); err != nil {
		return err
	}
	s := u.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.conn.WithContext(ctx).Transaction(fn); err != nil {
		log.Errorf("State write failed: %v", err)
		return err
	}
	if err := s.flushLocked(); err != nil {
		log.Errorf("State flush failed: %v", err)
		return err
	}
	if s.mode == PublishOnRelease {
		s.unpublished.Store(true)
		u.mu.Lock()
		u.dirty = true
		u.mu.Unlock()
		return nil
	}
	if err := s.publishLocked(ctx); err != nil {
		log.Errorf("Publishing state database failed, local commit kept: %v", err)
		u.mu.Lock()
		u.divergent = true
		u.mu.Unlock()
	}
	return nil
}

// Divergent reports whether a write of this session may not have reached remote storage
func (u *Session) Divergent() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.divergent
}

// Track registers the session as writer of a product. Another live session already
// writing the same product gets a warning only: the last full publish wins
func (u *Session) Track(uid uint32) {
	u.mu.Lock()
	if u.products[uid] {
		u.mu.Unlock()
		return
	}
	u.products[uid] = true
	u.mu.Unlock()

	key := strconv.FormatUint(uint64(uid), 10)
	if u.store.writers.SetIfAbsent(key, u.id) {
		return
	}
	if owner, ok := u.store.writers.Get(key); ok && owner != u.id {
		concurrentWriters.Inc()
		log.WithField("product", uid).Warnf("Product is also being written by session %d", owner)
	}
}

// Release ends the unit of work. In release mode this is where the database is published
func (u *Session) Release(ctx context.Context) {
	u.mu.Lock()
	dirty := u.dirty
	u.dirty = false
	products := u.products
	u.products = map[uint32]bool{}
	u.mu.Unlock()

	for uid := range products {
		u.store.writers.RemoveCb(strconv.FormatUint(uint64(uid), 10), func(_ string, owner uint64, exists bool) bool {
			return exists && owner == u.id
		})
	}
	if !dirty {
		return
	}
	s := u.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.publishLocked(ctx); err != nil {
		log.Errorf("Publishing state database on release failed: %v", err)
		u.mu.Lock()
		u.divergent = true
		u.mu.Unlock()
	}
}

const ginSessionKey = "stateSession"

// Middleware opens a Session per request and releases it once the handler is done
func (s *Store) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := s.NewSession()
		c.Set(ginSessionKey, session)
		c.Next()
		session.Release(c.Request.Context())
	}
}

func FromContext(c *gin.Context) (*Session, error) {
	v, ok := c.Get(ginSessionKey)
	if !ok {
		return nil, ErrNoSession
	}
	session, ok := v.(*Session)
	if !ok {
		return nil, ErrNoSession
	}
	return session, nil
}
