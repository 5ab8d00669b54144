package ws

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"care-chat/domain/event"
	"care-chat/errors"
)

func TestSink_Consume_AcceptsWhileBufferHasRoom(t *testing.T) {
	req := require.New(t)
	sink := NewSink(1)

	// A canceled context must not matter while the send can proceed
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	req.NoError(sink.Consume(ctx, event.Typing{ChatID: "alice-main_doctor", UserID: "alice"}))
	req.Len(sink.Events, 1)
}

func TestSink_Consume_FullBufferReportsSlowConsumer(t *testing.T) {
	req := require.New(t)
	sink := NewSink(1)
	ctx := context.Background()

	req.NoError(sink.Consume(ctx, event.Typing{ChatID: "alice-main_doctor", UserID: "alice"}))
	err := sink.Consume(ctx, event.Typing{ChatID: "alice-main_doctor", UserID: "alice"})
	req.ErrorIs(err, errors.ErrSlowConsumer)
}
