package ws

import (
	"context"

	"care-chat/domain/event"
	"care-chat/errors"
)

// Sink is the delivery end of one websocket connection. The write pump
// drains Events; Consume never blocks the relay loop.
type Sink struct {
	Events chan event.DomainEvent
}

func NewSink(bufferSize int) *Sink {
	return &Sink{Events: make(chan event.DomainEvent, bufferSize)}
}

// Consume hands the event to the connection's write pump. A full buffer
// means a slow consumer: the event is dropped and reported, the relay moves
// on (best-effort, at-most-once).
func (s *Sink) Consume(_ context.Context, e event.DomainEvent) error {
	select {
	case s.Events <- e:
		return nil
	default:
		return errors.ErrSlowConsumer
	}
}
