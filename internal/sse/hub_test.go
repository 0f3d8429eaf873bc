package sse

import (
	"testing"
	"time"

	"github.com/google/uuid"

	redisclient "github.com/loopyhq/loopy-backend/internal/clients/redis"
	"github.com/loopyhq/loopy-backend/internal/domain/plant"
	"github.com/loopyhq/loopy-backend/internal/pkg/logger"
)

func mustTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	t.Cleanup(log.Sync)
	return log
}

func recvUpdate(t *testing.T, ch <-chan redisclient.PlantUpdate, timeout time.Duration) redisclient.PlantUpdate {
	t.Helper()
	select {
	case u := <-ch:
		return u
	case <-time.After(timeout):
		t.Fatalf("timed out waiting for plant update")
	}
	return redisclient.PlantUpdate{}
}

func TestHubDispatchesToOwnerOnly(t *testing.T) {
	hub := NewHub(mustTestLogger(t))
	userA := uuid.New()
	userB := uuid.New()

	clientA := hub.NewClient(userA)
	hub.AddClient(clientA)
	clientB := hub.NewClient(userB)
	hub.AddClient(clientB)

	hub.Dispatch(redisclient.PlantUpdate{
		UserID: userA,
		Event:  plant.EventTaskCompleted,
		Plant:  plant.NewPlantState(userA, time.Now()),
		At:     time.Now().UTC(),
	})

	got := recvUpdate(t, clientA.Outbound, time.Second)
	if got.Event != plant.EventTaskCompleted || got.UserID != userA {
		t.Fatalf("clientA update = %+v", got)
	}
	select {
	case u := <-clientB.Outbound:
		t.Fatalf("clientB should not receive userA updates, got %+v", u)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestHubFansOutToAllUserClients(t *testing.T) {
	hub := NewHub(mustTestLogger(t))
	userID := uuid.New()

	first := hub.NewClient(userID)
	hub.AddClient(first)
	second := hub.NewClient(userID)
	hub.AddClient(second)

	hub.Dispatch(redisclient.PlantUpdate{UserID: userID, Event: plant.EventPhaseAdvanced, At: time.Now().UTC()})

	if got := recvUpdate(t, first.Outbound, time.Second); got.Event != plant.EventPhaseAdvanced {
		t.Fatalf("first client update = %+v", got)
	}
	if got := recvUpdate(t, second.Outbound, time.Second); got.Event != plant.EventPhaseAdvanced {
		t.Fatalf("second client update = %+v", got)
	}
}

func TestHubCloseStopsDelivery(t *testing.T) {
	hub := NewHub(mustTestLogger(t))
	userID := uuid.New()

	client := hub.NewClient(userID)
	hub.AddClient(client)
	hub.CloseClient(client)

	select {
	case _, ok := <-client.Outbound:
		if ok {
			t.Fatalf("outbound should be closed after disconnect")
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatalf("timed out waiting for channel close")
	}

	// A closed client is out of the subscription table; this must not panic.
	hub.Dispatch(redisclient.PlantUpdate{UserID: userID, Event: plant.EventPlantReset, At: time.Now().UTC()})
}

func TestHubDropsWhenBufferFull(t *testing.T) {
	hub := NewHub(mustTestLogger(t))
	userID := uuid.New()

	client := hub.NewClient(userID)
	hub.AddClient(client)

	// Buffer is 10 deep; the extras are dropped without blocking.
	for i := 0; i < 25; i++ {
		hub.Dispatch(redisclient.PlantUpdate{UserID: userID, Event: plant.EventTaskCompleted, At: time.Now().UTC()})
	}
	if got := len(client.Outbound); got != 10 {
		t.Fatalf("buffered updates = %d, want 10", got)
	}
}
