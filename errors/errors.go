package errors

import "fmt"

var (
	ErrWorkerPanic      = fmt.Errorf("worker panic")
	ErrSessionNotFound  = fmt.Errorf("session not found")
	ErrMalformedPayload = fmt.Errorf("malformed payload")
	ErrUnknownEvent     = fmt.Errorf("unknown event")
	ErrSlowConsumer     = fmt.Errorf("connection buffer full")
	ErrEmptyWords       = fmt.Errorf("no words have been found")
)
