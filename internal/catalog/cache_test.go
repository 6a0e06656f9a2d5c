package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusbot/course-ai-platform/pkg/logging"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client, func()) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return mr, client, func() {
		client.Close()
		mr.Close()
	}
}

// fakeSource counts fetches.
type fakeSource struct {
	calls   int
	courses []Course
	err     error
}

func (f *fakeSource) Fetch(_ context.Context) ([]Course, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.courses, nil
}

func TestCacheFillsAndServesFromRedis(t *testing.T) {
	mr, client, cleanup := setupTestRedis(t)
	defer cleanup()

	src := &fakeSource{courses: sampleCourses()}
	cache := NewCache(client, src, 15*time.Minute, logging.New("error"))

	courses, err := cache.Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, courses, 2)
	assert.Equal(t, 1, src.calls)
	assert.True(t, mr.Exists(cacheKey))
	assert.Greater(t, mr.TTL(cacheKey), time.Duration(0))

	// Second read is served from Redis.
	courses, err = cache.Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, courses, 2)
	assert.Equal(t, 1, src.calls)
}

func TestCacheRefetchesCorruptEntry(t *testing.T) {
	mr, client, cleanup := setupTestRedis(t)
	defer cleanup()

	require.NoError(t, mr.Set(cacheKey, "{not json"))

	src := &fakeSource{courses: sampleCourses()}
	cache := NewCache(client, src, time.Minute, logging.New("error"))

	courses, err := cache.Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, courses, 2)
	assert.Equal(t, 1, src.calls)
}

func TestCacheDegradesWhenRedisDown(t *testing.T) {
	mr, client, cleanup := setupTestRedis(t)
	cleanup()
	_ = mr

	src := &fakeSource{courses: sampleCourses()}
	cache := NewCache(client, src, time.Minute, logging.New("error"))

	courses, err := cache.Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, courses, 2)
	assert.Equal(t, 1, src.calls)
}

func TestCachePropagatesSourceError(t *testing.T) {
	_, client, cleanup := setupTestRedis(t)
	defer cleanup()

	src := &fakeSource{err: errors.New("feed unavailable")}
	cache := NewCache(client, src, time.Minute, logging.New("error"))

	_, err := cache.Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cache fill")
}

func TestCacheWorksWithoutRedis(t *testing.T) {
	src := &fakeSource{courses: sampleCourses()}
	cache := NewCache(nil, src, time.Minute, logging.New("error"))

	courses, err := cache.Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, courses, 2)
}

func TestNewCacheRequiresSource(t *testing.T) {
	assert.Panics(t, func() { NewCache(nil, nil, time.Minute, nil) })
}
