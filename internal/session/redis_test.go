package session_test

import (
	"context"
	"testing"
	"time"

	"family-calendar/internal/models"
	"family-calendar/internal/session"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestRedisStoreIntegration exercises the Redis session store against a
// real Redis container.
func TestRedisStoreIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping Redis integration test in short mode")
	}

	ctx := context.Background()
	redisContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:latest",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}
	defer redisContainer.Terminate(ctx)

	host, err := redisContainer.Host(ctx)
	require.NoError(t, err)
	port, err := redisContainer.MappedPort(ctx, "6379")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{
		Addr: host + ":" + port.Port(),
	})
	store := session.NewRedisStore(client, time.Minute)

	// Unknown ids read as no session, not as an error.
	sess, err := store.Get(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, sess)

	// Round trip.
	bound := &models.Session{UserID: 2, UserName: "Family Member B"}
	require.NoError(t, store.Set(ctx, "sid-1", bound))

	sess, err = store.Get(ctx, "sid-1")
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, int64(2), sess.UserID)
	assert.Equal(t, "Family Member B", sess.UserName)

	// Delete is final and idempotent.
	require.NoError(t, store.Delete(ctx, "sid-1"))
	require.NoError(t, store.Delete(ctx, "sid-1"))

	sess, err = store.Get(ctx, "sid-1")
	require.NoError(t, err)
	assert.Nil(t, sess)
}
