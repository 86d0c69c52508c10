//go:build integration

package boardevents_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/aussiebroadwan/consultboard/pkg/boardevents"
	"github.com/aussiebroadwan/consultboard/pkg/boardsdk"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupRedis starts a Redis container for testing.
func setupRedis(t *testing.T) string {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}

	redisC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err, "failed to start redis container")
	t.Cleanup(func() {
		if err := redisC.Terminate(ctx); err != nil {
			t.Logf("failed to terminate redis container: %v", err)
		}
	})

	host, err := redisC.Host(ctx)
	require.NoError(t, err)
	port, err := redisC.MappedPort(ctx, "6379")
	require.NoError(t, err)

	return fmt.Sprintf("redis://%s:%s", host, port.Port())
}

func TestRedisBusAgainstRealRedis(t *testing.T) {
	url := setupRedis(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	publisher, err := boardevents.NewRedisBusFromURL(url, "integration")
	require.NoError(t, err)
	defer publisher.Close()

	viewer, err := boardevents.NewRedisBusFromURL(url, "integration")
	require.NoError(t, err)
	defer viewer.Close()

	sub, err := viewer.Subscribe(ctx)
	require.NoError(t, err)
	defer sub.Close()

	pid := "p1"
	require.NoError(t, publisher.Publish(ctx, boardevents.ConsultantMoved, boardsdk.Consultant{ID: "x1", Name: "Ana", ProjectID: &pid}))

	ev := receive(t, sub)
	x, err := ev.Consultant()
	require.NoError(t, err)
	require.Equal(t, "p1", *x.ProjectID)
}
