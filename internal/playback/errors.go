package playback

import (
	"errors"
	"fmt"
)

var (
	// ErrCursorBounds marks a broken cursor invariant. It is not recoverable.
	ErrCursorBounds = errors.New("playback: cursor out of bounds")

	// ErrUnknownCommand is returned by Submit and ParseCommand for unknown commands.
	ErrUnknownCommand = errors.New("playback: unknown command")

	// ErrClosed is returned by Submit and Tick after Close.
	ErrClosed = errors.New("playback: controller closed")
)

// BoundsError reports the cursor and trace length that broke the invariant.
type BoundsError struct {
	Cursor int
	Len    int
}

func (e *BoundsError) Error() string {
	return fmt.Sprintf("playback: cursor %d outside [0,%d]", e.Cursor, e.Len)
}

func (e *BoundsError) Unwrap() error { return ErrCursorBounds }
