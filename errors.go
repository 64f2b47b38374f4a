package gridseq

import "errors"

var (
	// ErrOutOfRange is returned when a row or step index does not address a
	// cell of the grid.
	ErrOutOfRange = errors.New("index out of range")

	// ErrSourceUnavailable is returned when a row has no sound, or its sound
	// could not be opened for playback.
	ErrSourceUnavailable = errors.New("sound source unavailable")
)
