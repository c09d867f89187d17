package project

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/jesusq18/DroneShow-Demo/internal/show"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewStore(Options{Client: client}), mr
}

func testRecord(id string, createdAt time.Time) Record {
	return Record{
		ID:        id,
		CreatedAt: createdAt,
		Request: show.Request{
			ClientName: "Rivera Wedding",
			EventType:  show.EventWedding,
			Elements:   "a heart and two interlocking rings",
		},
		ImageData: "b64-image",
		ImageMime: "image/jpeg",
	}
}

func TestSaveAndList(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	older := testRecord("p1", time.Now().Add(-time.Hour))
	newer := testRecord("p2", time.Now())

	persisted, err := store.Save(ctx, older)
	require.NoError(t, err)
	require.Equal(t, older, persisted)

	_, err = store.Save(ctx, newer)
	require.NoError(t, err)

	records, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, "p2", records[0].ID)
	require.Equal(t, "p1", records[1].ID)
	require.Equal(t, "b64-image", records[1].ImageData)
	require.Equal(t, show.EventWedding, records[1].Request.EventType)
}

func TestListSkipsCorruptRecords(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	_, err := store.Save(ctx, testRecord("good", time.Now()))
	require.NoError(t, err)
	mr.HSet(defaultKey, "bad", "{not json")

	records, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "good", records[0].ID)
}

// capacityFailingCommands fails the first HSet with a capacity error and
// delegates everything afterwards to the real client.
type capacityFailingCommands struct {
	Commands
	failed bool
}

func (c *capacityFailingCommands) HSet(ctx context.Context, key string, values ...interface{}) *redis.IntCmd {
	if !c.failed {
		c.failed = true
		cmd := redis.NewIntCmd(ctx)
		cmd.SetErr(errors.New("OOM command not allowed when used memory > 'maxmemory'"))
		return cmd
	}
	return c.Commands.HSet(ctx, key, values...)
}

func TestSaveDegradesUnderCapacityPressure(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	store := NewStore(Options{Client: &capacityFailingCommands{Commands: client}})
	ctx := context.Background()

	rec := testRecord("p1", time.Now())
	rec.VideoData = "b64-video"
	rec.VideoMime = "video/mp4"
	rec.VideoURI = "https://files.example/video/abc"

	persisted, err := store.Save(ctx, rec)
	require.NoError(t, err)

	require.True(t, persisted.Degraded)
	require.Empty(t, persisted.ImageData)
	require.Empty(t, persisted.VideoData)
	require.Equal(t, "https://files.example/video/abc", persisted.VideoURI)
	require.Equal(t, rec.Request, persisted.Request)

	// The caller's copy keeps its media.
	require.Equal(t, "b64-image", rec.ImageData)
	require.Equal(t, "b64-video", rec.VideoData)

	records, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.True(t, records[0].Degraded)
	require.Empty(t, records[0].ImageData)
}

func TestSaveNonCapacityErrorFails(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	mr.SetError("READONLY replica")
	store := NewStore(Options{Client: client})

	_, err := store.Save(context.Background(), testRecord("p1", time.Now()))
	require.Error(t, err)
}
