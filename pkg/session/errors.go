package session

import "errors"

var (
	// ErrInvalidState is returned when an operation is called in a session
	// state that forbids it, e.g. Submit after end-of-stream. The call is
	// not retryable as-is; the caller's sequencing is wrong.
	ErrInvalidState = errors.New("session: operation not valid in current state")

	// ErrInvalidConfig is returned by New for configuration combinations
	// that can never encode, e.g. a last pass without stats input.
	ErrInvalidConfig = errors.New("session: invalid configuration")

	// ErrBackpressure is returned by Submit when packets from a previous
	// step have not been drained. Recoverable: drain via RetrievePackets
	// and retry the submission.
	ErrBackpressure = errors.New("session: undrained packets, retrieve before submitting")

	// ErrEncodeFailure is returned when the encode engine rejects a frame
	// or violates the pass contract. Fatal to the session: it is forced
	// to Closed and no further packets are retrievable.
	ErrEncodeFailure = errors.New("session: encode engine failure")
)
