//go:build integration

package state

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestRedisStoreAgainstServer(t *testing.T) {
	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("start redis: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	endpoint, err := container.Endpoint(ctx, "")
	if err != nil {
		t.Fatalf("endpoint: %v", err)
	}
	client := NewRedisClient(RedisConfig{Addr: endpoint})
	t.Cleanup(func() { _ = client.Close() })

	store, err := NewRedisStore(client, WithTTL(time.Minute))
	if err != nil {
		t.Fatalf("NewRedisStore() error = %v", err)
	}

	st := NewSessionState("thread-1", time.Now())
	st.Slots.GuestName = "Alice"
	if err := store.Save(ctx, st); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	ttl, err := client.TTL(ctx, "motel:session:thread-1").Result()
	if err != nil || ttl <= 0 || ttl > time.Minute {
		t.Fatalf("TTL = %v, %v", ttl, err)
	}

	got, err := store.Load(ctx, "thread-1")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.Slots.GuestName != "Alice" {
		t.Fatalf("GuestName = %q, want Alice", got.Slots.GuestName)
	}

	if err := store.Delete(ctx, "thread-1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := store.Load(ctx, "thread-1"); !errors.Is(err, ErrStateNotFound) {
		t.Fatalf("Load() error = %v, want ErrStateNotFound", err)
	}
}
