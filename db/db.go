package db

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/TwoX-In/GenAI-Hackathon/models"
	"github.com/TwoX-In/GenAI-Hackathon/storage"
	"github.com/TwoX-In/GenAI-Hackathon/utils"
	cmap "github.com/orcaman/concurrent-map/v2"
	log "github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type PublishMode string

const (
	// PublishSnapshot uploads the whole database after every successful write
	PublishSnapshot PublishMode = "snapshot"
	// PublishOnRelease uploads once, when a session that wrote something is released
	PublishOnRelease PublishMode = "release"
)

const sqliteMimeType = "application/x-sqlite3"

// Store is the process-local SQLite copy of a database whose canonical version
// is an object in remote storage. All access goes through a Session
type Store struct {
	mu     sync.RWMutex
	remote storage.StorageAPI
	object string
	mode   PublishMode
	pool   *utils.Pool
	conn   *gorm.DB

	sessionSeq  atomic.Uint64
	unpublished atomic.Bool
	// product ID -> session ID of the request currently writing it
	writers cmap.ConcurrentMap[string, uint64]
}

func NewStore(remote storage.StorageAPI, object string, mode PublishMode, pool *utils.Pool) *Store {
	if mode != PublishOnRelease {
		mode = PublishSnapshot
	}
	if pool == nil {
		pool = utils.NewPool(1)
	}
	return &Store{
		remote:  remote,
		object:  object,
		mode:    mode,
		pool:    pool,
		writers: cmap.New[uint64](),
	}
}

func (s *Store) localPath() string {
	return s.remote.GetFullPath(s.object)
}

// Unpublished reports whether the local copy has commits that never reached remote storage
func (s *Store) Unpublished() bool {
	return s.unpublished.Load()
}

// fetch replaces the local copy with the remote one. A missing remote object
// starts an empty database, any other failure keeps whatever is local.
// Local commits that were never published are not overwritten
func (s *Store) fetch(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn != nil && s.unpublished.Load() {
		fetchesTotal.WithLabelValues("kept").Inc()
		log.Debugf("State database %s has unpublished commits, keeping local copy", s.object)
		return nil
	}
	start := time.Now()
	if err := s.closeLocked(); err != nil {
		log.Warnf("Closing state database before fetch: %v", err)
	}
	err := s.remote.EnsureLocalFile(ctx, s.object)
	switch {
	case err == nil:
		fetchesTotal.WithLabelValues("ok").Inc()
		s.unpublished.Store(false)
	case errors.Is(err, storage.ErrNotFound):
		fetchesTotal.WithLabelValues("missing").Inc()
		log.Printf("State database %s not found remotely, starting empty", s.object)
		if rmErr := os.Remove(s.localPath()); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			log.Warnf("Removing stale local state database: %v", rmErr)
		}
	default:
		fetchesTotal.WithLabelValues("failed").Inc()
		log.Errorf("Fetching state database %s failed, continuing with local copy: %v", s.object, err)
	}
	if err = s.openLocked(); err != nil {
		return err
	}
	log.Printf("State database fetched, time: %v", time.Since(start))
	return nil
}

func (s *Store) openLocked() error {
	path := s.localPath()
	if err := os.MkdirAll(filepath.Dir(path), 0777); err != nil {
		return err
	}
	conn, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
		Logger:                 logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return fmt.Errorf("opening state database: %w", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		return err
	}
	// One connection, so pragmas and the file on disk stay in step
	sqlDB.SetMaxOpenConns(1)
	if err = conn.Exec("PRAGMA synchronous=FULL").Error; err != nil {
		return err
	}
	if err = models.Migrate(conn); err != nil {
		_ = sqlDB.Close()
		return fmt.Errorf("migrating state database: %w", err)
	}
	s.conn = conn
	return nil
}

func (s *Store) closeLocked() error {
	if s.conn == nil {
		return nil
	}
	sqlDB, err := s.conn.DB()
	s.conn = nil
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// flushLocked makes sure everything committed is in the main database file
func (s *Store) flushLocked() error {
	if err := s.conn.Exec("PRAGMA synchronous=FULL").Error; err != nil {
		return err
	}
	return s.conn.Exec("PRAGMA wal_checkpoint(FULL)").Error
}

// publishLocked uploads the entire local database
func (s *Store) publishLocked(ctx context.Context) error {
	start := time.Now()
	err := s.pool.Do(ctx, func() error {
		return s.remote.UpdateRemoteFile(ctx, s.object, sqliteMimeType)
	})
	publishSeconds.Observe(time.Since(start).Seconds())
	if err != nil {
		publishesTotal.WithLabelValues("failed").Inc()
		s.unpublished.Store(true)
		return err
	}
	publishesTotal.WithLabelValues("ok").Inc()
	s.unpublished.Store(false)
	return nil
}

// Close closes the database. A fully published local copy is removed, the next
// process fetches it again anyway
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.closeLocked(); err != nil {
		return err
	}
	if !s.unpublished.Load() {
		s.remote.ReleaseLocalFile(s.object)
	}
	return nil
}
