// Package chat abstracts the live chat feed the giveaway engine ingests.
//
// It provides two Source implementations:
//   - YouTubeSource: polls the live chat of a YouTube broadcast through the
//     Data API (liveChatMessages.list with a page token), authenticated with
//     an API key.
//   - TwitchSource: joins a Twitch channel over IRC and buffers incoming
//     messages so they can be drained with the same Poll interface.
//
// A Source is created once per process run against a given stream id and
// reused across giveaway rounds. Poll returns zero or more messages and may
// block on I/O; IsAlive reports whether the underlying session is still
// connectable (a dead session ends the current intake window early).
package chat
