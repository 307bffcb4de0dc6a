package chat

import "context"

// Message is one raw chat line. Author is the chat display name of the
// sender; Text is the message body as typed.
type Message struct {
	Author string
	Text   string
}

// Source supplies an unbounded, non-restartable stream of chat messages.
type Source interface {
	// Poll returns the next batch of messages. It may block on I/O and may
	// return an empty batch. Transient read errors should be surfaced as an
	// error with an empty batch; the caller logs and keeps polling.
	Poll(ctx context.Context) ([]Message, error)
	// IsAlive reports whether the chat session is still connectable.
	IsAlive() bool
}
