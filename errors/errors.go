package errors

import "fmt"

var (
	ErrWorkerPanic    = fmt.Errorf("worker panic")
	ErrInvalidPayload = fmt.Errorf("invalid event payload")
)
