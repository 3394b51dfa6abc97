package job

import (
	"context"
	"fmt"
	"runtime/debug"
)

// PanicError is returned by Safe when a job panics.
type PanicError struct {
	Value any
	Stack string
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Safe runs j and converts a panic into a *PanicError.
func Safe(ctx context.Context, j Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r, Stack: string(debug.Stack())}
		}
	}()
	return j.Run(ctx)
}
