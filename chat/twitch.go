package chat

import (
	"context"
	"log/slog"
	"sync/atomic"

	twitch "github.com/gempir/go-twitch-irc/v4"
)

// twitchBufferSize bounds the number of messages held between polls. Under a
// message storm the oldest unread lines are dropped with a warning rather
// than blocking the IRC read loop.
const twitchBufferSize = 1024

// TwitchSource joins a Twitch channel over IRC and buffers incoming messages
// so they can be drained with Poll. When username/token are empty the
// connection is anonymous, which is sufficient for reading chat.
type TwitchSource struct {
	client  *twitch.Client
	buf     chan Message
	alive   atomic.Bool
	channel string
}

// NewTwitchSource connects to the given channel. Connect runs on its own
// goroutine; the source reports not-alive once the connection drops.
func NewTwitchSource(channel, username, oauthToken string) *TwitchSource {
	var client *twitch.Client
	if username == "" || oauthToken == "" {
		client = twitch.NewAnonymousClient()
	} else {
		client = twitch.NewClient(username, oauthToken)
	}
	s := &TwitchSource{
		client:  client,
		buf:     make(chan Message, twitchBufferSize),
		channel: channel,
	}
	client.OnConnect(func() {
		s.alive.Store(true)
		slog.Info("twitch chat connected", slog.String("channel", channel), slog.String("component", "chat"))
	})
	client.OnPrivateMessage(func(msg twitch.PrivateMessage) {
		select {
		case s.buf <- Message{Author: msg.User.DisplayName, Text: msg.Message}:
		default:
			slog.Warn("twitch chat buffer full; dropping message", slog.String("component", "chat"))
		}
	})
	client.Join(channel)
	go func() {
		if err := s.client.Connect(); err != nil {
			slog.Error("twitch chat connect error", slog.Any("err", err), slog.String("component", "chat"))
		}
		s.alive.Store(false)
	}()
	return s
}

// Poll drains whatever messages arrived since the previous call. It never
// blocks; an idle channel yields an empty batch.
func (s *TwitchSource) Poll(ctx context.Context) ([]Message, error) {
	var out []Message
	for {
		select {
		case <-ctx.Done():
			return out, ctx.Err()
		case m := <-s.buf:
			out = append(out, m)
		default:
			return out, nil
		}
	}
}

// IsAlive reports whether the IRC connection is up.
func (s *TwitchSource) IsAlive() bool {
	return s.alive.Load()
}

// Close disconnects from IRC.
func (s *TwitchSource) Close() error {
	s.alive.Store(false)
	return s.client.Disconnect()
}
