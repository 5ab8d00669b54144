//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"care-chat/domain"
	"care-chat/domain/event"
	"context"
	"reflect"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

type WorkerName string

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// EventSink is the delivery end of one connection, or a permanent consumer
// such as the search indexer. Consume must never block the relay loop.
type EventSink interface {
	Consume(ctx context.Context, e event.DomainEvent) error
}

// Dispatcher is the inbound face of the relay engine. The transport layer
// only ever talks to the relay through it. Disconnect takes the sink of the
// closing connection: a teardown racing a reconnect must not unregister the
// replacement.
type Dispatcher interface {
	Connect(userID string, role domain.Role, sink EventSink)
	Disconnect(userID string, sink EventSink)
	Dispatch(cmd domain.Command)
}

// HistoryStore is the backing store for session message history. The
// in-memory store is the reference behavior; a persistent store may be
// swapped in without changing protocol semantics.
type HistoryStore interface {
	Append(chatID domain.ChatID, msg domain.Message) error
	History(chatID domain.ChatID) ([]domain.Message, error)
	// MarkRead flips the read flag of the listed messages whose sender is
	// not excludeSenderID and returns the ids actually affected. Unknown
	// ids are skipped silently.
	MarkRead(chatID domain.ChatID, messageIDs []string, excludeSenderID string) ([]string, error)
}
