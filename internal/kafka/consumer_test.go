package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	kafkaGo "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatch_DecodesBookingEvent(t *testing.T) {
	event := BookingEvent{
		Type:           "booking_confirmed",
		BookingID:      uuid.New(),
		Reference:      "AB12CD34",
		ContactEmail:   "anna@example.com",
		PassengerCount: 2,
	}
	payload, err := json.Marshal(event)
	require.NoError(t, err)

	var got BookingEvent
	err = dispatch(context.Background(), kafkaGo.Message{Value: payload},
		func(ctx context.Context, e BookingEvent) error {
			got = e
			return nil
		})

	require.NoError(t, err)
	assert.Equal(t, event.BookingID, got.BookingID)
	assert.Equal(t, "AB12CD34", got.Reference)
	assert.Equal(t, 2, got.PassengerCount)
}

func TestDispatch_SkipsUndecodableMessage(t *testing.T) {
	called := false
	err := dispatch(context.Background(), kafkaGo.Message{Value: []byte("{broken")},
		func(ctx context.Context, e BookingEvent) error {
			called = true
			return nil
		})

	// A poison message is dropped, not retried forever.
	assert.NoError(t, err)
	assert.False(t, called)
}

func TestDispatch_PropagatesHandlerError(t *testing.T) {
	payload, err := json.Marshal(BookingEvent{Type: "booking_cancelled"})
	require.NoError(t, err)

	wantErr := errors.New("smtp unreachable")
	err = dispatch(context.Background(), kafkaGo.Message{Value: payload},
		func(ctx context.Context, e BookingEvent) error {
			return wantErr
		})

	assert.ErrorIs(t, err, wantErr)
}
