package db

import (
	"context"
	"errors"
	"os"
	"sync/atomic"
	"testing"

	"github.com/TwoX-In/GenAI-Hackathon/models"
	"github.com/TwoX-In/GenAI-Hackathon/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testObject = "artisan_database/app.db"

// countingRemote wraps a disk bucket, counting fetches and optionally failing uploads
type countingRemote struct {
	storage.StorageAPI
	fetches     atomic.Int32
	publishes   atomic.Int32
	failPublish atomic.Bool
	failFetch   atomic.Bool
}

func (r *countingRemote) EnsureLocalFile(ctx context.Context, path string) error {
	r.fetches.Add(1)
	if r.failFetch.Load() {
		return errors.New("network unreachable")
	}
	return r.StorageAPI.EnsureLocalFile(ctx, path)
}

func (r *countingRemote) UpdateRemoteFile(ctx context.Context, path, mimeType string) error {
	r.publishes.Add(1)
	if r.failPublish.Load() {
		return errors.New("upload rejected")
	}
	return r.StorageAPI.UpdateRemoteFile(ctx, path, mimeType)
}

// newRemote returns a remote backed by remoteDir with its own local cache dir,
// so two of them over the same remoteDir behave like two processes
func newRemote(t *testing.T, remoteDir string) *countingRemote {
	return &countingRemote{StorageAPI: storage.NewDiskStorage(&storage.Bucket{
		Name:        "state",
		StorageType: storage.StorageTypeFile,
		Path:        remoteDir,
		LocalDir:    t.TempDir(),
	})}
}

func newTestStore(t *testing.T, remote *countingRemote, mode PublishMode) *Store {
	s := NewStore(remote, testObject, mode, nil)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func readStyle(t *testing.T, session *Session, uid uint32) string {
	var attrs *models.ProductAttributes
	err := session.Read(context.Background(), func(tx *gorm.DB) (err error) {
		attrs, err = models.GetAttributes(tx, uid)
		return
	})
	require.NoError(t, err)
	return attrs.Get(models.AttributeStyle)
}

func writeStyle(t *testing.T, session *Session, uid uint32, style string) {
	err := session.Write(context.Background(), func(tx *gorm.DB) error {
		return models.SetAttribute(tx, uid, models.AttributeStyle, style)
	})
	require.NoError(t, err)
}

func TestSession_WriteThenReadFetchesOnce(t *testing.T) {
	remote := newRemote(t, t.TempDir())
	store := newTestStore(t, remote, PublishSnapshot)
	session := store.NewSession()

	writeStyle(t, session, 42, "Madhubani Folk Painting")

	var attrs *models.ProductAttributes
	err := session.Read(context.Background(), func(tx *gorm.DB) (err error) {
		attrs, err = models.GetAttributes(tx, 42)
		return
	})
	require.NoError(t, err)
	require.NotNil(t, attrs)
	assert.Equal(t, uint32(42), attrs.ID)
	assert.Equal(t, "Madhubani Folk Painting", *attrs.Style)
	assert.Nil(t, attrs.Origin)

	assert.Equal(t, int32(1), remote.fetches.Load())
	assert.Equal(t, int32(1), remote.publishes.Load())
	assert.False(t, session.Divergent())
}

func TestSession_NewSessionFetchesAgain(t *testing.T) {
	remoteDir := t.TempDir()
	writer := newTestStore(t, newRemote(t, remoteDir), PublishSnapshot)
	writeStyle(t, writer.NewSession(), 7, "Warli")

	// Another process sees the published copy
	remote := newRemote(t, remoteDir)
	reader := newTestStore(t, remote, PublishSnapshot)
	assert.Equal(t, "Warli", readStyle(t, reader.NewSession(), 7))
	assert.Equal(t, "Warli", readStyle(t, reader.NewSession(), 7))
	assert.Equal(t, int32(2), remote.fetches.Load())
}

func TestSession_PublishFailureDiverges(t *testing.T) {
	remoteDir := t.TempDir()
	remote := newRemote(t, remoteDir)
	store := newTestStore(t, remote, PublishSnapshot)

	writeStyle(t, store.NewSession(), 42, "Madhubani Folk Painting")

	remote.failPublish.Store(true)
	session := store.NewSession()
	writeStyle(t, session, 42, "Gond Art")
	assert.True(t, session.Divergent())
	assert.True(t, store.Unpublished())
	// The local commit is still visible to this process
	assert.Equal(t, "Gond Art", readStyle(t, session, 42))

	// A restarted process only sees what reached remote storage
	restarted := newTestStore(t, newRemote(t, remoteDir), PublishSnapshot)
	assert.Equal(t, "Madhubani Folk Painting", readStyle(t, restarted.NewSession(), 42))
}

func TestSession_FetchFailureIsNotFatal(t *testing.T) {
	remote := newRemote(t, t.TempDir())
	remote.failFetch.Store(true)
	store := newTestStore(t, remote, PublishSnapshot)
	session := store.NewSession()

	assert.Equal(t, "", readStyle(t, session, 1))
	writeStyle(t, session, 1, "Pattachitra")
	assert.Equal(t, "Pattachitra", readStyle(t, session, 1))
}

func TestSession_WriteErrorIsReturned(t *testing.T) {
	remote := newRemote(t, t.TempDir())
	store := newTestStore(t, remote, PublishSnapshot)
	session := store.NewSession()

	boom := errors.New("boom")
	err := session.Write(context.Background(), func(tx *gorm.DB) error {
		if err := models.SetAttribute(tx, 3, models.AttributeStyle, "Kalamkari"); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "", readStyle(t, session, 3))
	assert.Equal(t, int32(0), remote.publishes.Load())
}

func TestSession_PublishOnRelease(t *testing.T) {
	remoteDir := t.TempDir()
	remote := newRemote(t, remoteDir)
	store := newTestStore(t, remote, PublishOnRelease)
	session := store.NewSession()

	writeStyle(t, session, 5, "Phad")
	err := session.Write(context.Background(), func(tx *gorm.DB) error {
		return models.SetPrice(tx, 5, 1500)
	})
	require.NoError(t, err)
	assert.Equal(t, int32(0), remote.publishes.Load())
	assert.True(t, store.Unpublished())

	session.Release(context.Background())
	assert.Equal(t, int32(1), remote.publishes.Load())
	assert.False(t, store.Unpublished())

	other := newTestStore(t, newRemote(t, remoteDir), PublishSnapshot)
	assert.Equal(t, "Phad", readStyle(t, other.NewSession(), 5))
}

func TestSession_ReleaseModeKeepsUnpublishedCommits(t *testing.T) {
	remoteDir := t.TempDir()
	remote := newRemote(t, remoteDir)
	store := newTestStore(t, remote, PublishOnRelease)

	a := store.NewSession()
	writeStyle(t, a, 5, "Phad")

	// A request starting while a is still running must not refetch over a's commit
	b := store.NewSession()
	assert.Equal(t, "Phad", readStyle(t, b, 5))
	b.Release(context.Background())
	assert.Equal(t, int32(1), remote.fetches.Load())
	assert.Equal(t, int32(0), remote.publishes.Load())

	a.Release(context.Background())
	assert.Equal(t, int32(1), remote.publishes.Load())
	assert.False(t, a.Divergent())

	restarted := newTestStore(t, newRemote(t, remoteDir), PublishSnapshot)
	assert.Equal(t, "Phad", readStyle(t, restarted.NewSession(), 5))

	// Once published, new sessions fetch again
	readStyle(t, store.NewSession(), 5)
	assert.Equal(t, int32(2), remote.fetches.Load())
}

func TestStore_CloseReleasesPublishedCopy(t *testing.T) {
	remote := newRemote(t, t.TempDir())
	store := NewStore(remote, testObject, PublishSnapshot, nil)
	writeStyle(t, store.NewSession(), 1, "Warli")

	local := remote.GetFullPath(testObject)
	_, err := os.Stat(local)
	require.NoError(t, err)
	require.NoError(t, store.Close())
	_, err = os.Stat(local)
	assert.ErrorIs(t, err, os.ErrNotExist)

	remote.failPublish.Store(true)
	unpublished := NewStore(remote, testObject, PublishSnapshot, nil)
	writeStyle(t, unpublished.NewSession(), 1, "Gond Art")
	require.NoError(t, unpublished.Close())
	_, err = os.Stat(local)
	assert.NoError(t, err, "unpublished commits stay on disk")
}

func TestSession_Track(t *testing.T) {
	store := newTestStore(t, newRemote(t, t.TempDir()), PublishSnapshot)
	a, b := store.NewSession(), store.NewSession()

	a.Track(9)
	b.Track(9)
	owner, ok := store.writers.Get("9")
	require.True(t, ok)
	assert.Equal(t, a.id, owner)

	// b does not own the entry, releasing it must keep a's claim
	b.Release(context.Background())
	_, ok = store.writers.Get("9")
	assert.True(t, ok)

	a.Release(context.Background())
	_, ok = store.writers.Get("9")
	assert.False(t, ok)
}
