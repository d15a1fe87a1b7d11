package events_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"car-rental-adjustments/internal/domain"
	"car-rental-adjustments/internal/events"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisPublisher_Publish(t *testing.T) {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	defer client.Close()

	publisher := events.NewRedisPublisher(client, "adjustments:events", "adjustments.events")
	ctx := context.Background()

	event := domain.Event{
		Type:        domain.EventDamageCharged,
		ReportID:    10,
		RentalID:    2,
		AmountCents: 75_000,
		Currency:    "EUR",
		OccurredAt:  time.Date(2026, 3, 11, 9, 0, 0, 0, time.UTC),
	}
	require.NoError(t, publisher.Publish(ctx, event))

	payload, err := srv.Lpop("adjustments:events")
	require.NoError(t, err)

	var got domain.Event
	require.NoError(t, json.Unmarshal([]byte(payload), &got))
	assert.Equal(t, domain.EventDamageCharged, got.Type)
	assert.Equal(t, int64(75_000), got.AmountCents)
	assert.Equal(t, int32(2), got.RentalID)
}

func TestRedisPublisher_QueueOrderPreserved(t *testing.T) {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	defer client.Close()

	publisher := events.NewRedisPublisher(client, "q", "c")
	ctx := context.Background()

	for _, typ := range []domain.EventType{domain.EventDamageAssessed, domain.EventDamageCharged, domain.EventDamageDisputed} {
		require.NoError(t, publisher.Publish(ctx, domain.Event{Type: typ, RentalID: 2}))
	}

	for _, want := range []domain.EventType{domain.EventDamageAssessed, domain.EventDamageCharged, domain.EventDamageDisputed} {
		payload, err := srv.Lpop("q")
		require.NoError(t, err)
		var got domain.Event
		require.NoError(t, json.Unmarshal([]byte(payload), &got))
		assert.Equal(t, want, got.Type)
	}
}

func TestRedisPublisher_ConnectionFailure(t *testing.T) {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	defer client.Close()
	srv.Close()

	publisher := events.NewRedisPublisher(client, "q", "c")
	err := publisher.Publish(context.Background(), domain.Event{Type: domain.EventPenaltyWaived, RentalID: 2})
	assert.Error(t, err)
}

type stubPublisher struct {
	events []domain.Event
	err    error
}

func (s *stubPublisher) Publish(_ context.Context, event domain.Event) error {
	s.events = append(s.events, event)
	return s.err
}

func TestFanout(t *testing.T) {
	t.Run("every sink receives the event", func(t *testing.T) {
		a := &stubPublisher{}
		b := &stubPublisher{}
		fan := events.NewFanout(a, b)

		require.NoError(t, fan.Publish(context.Background(), domain.Event{Type: domain.EventDamageResolved}))
		assert.Len(t, a.events, 1)
		assert.Len(t, b.events, 1)
	})

	t.Run("one failing sink does not stop the others", func(t *testing.T) {
		a := &stubPublisher{err: errors.New("sink down")}
		b := &stubPublisher{}
		fan := events.NewFanout(a, b)

		err := fan.Publish(context.Background(), domain.Event{Type: domain.EventDamageResolved})
		assert.Error(t, err)
		assert.Len(t, b.events, 1, "second sink still receives the event")
	})
}
