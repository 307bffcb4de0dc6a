package chat

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// YouTubeSource polls the live chat attached to a YouTube broadcast.
// The Data API hands back a page token per response; polling resumes from it
// so each message is seen exactly once.
type YouTubeSource struct {
	svc        *youtube.Service
	liveChatID string
	pageToken  string
	alive      atomic.Bool
}

// NewYouTubeSource resolves the active live chat id of the given video and
// returns a pollable source. It fails when the video does not exist or has no
// active live chat (ended or not a live broadcast).
func NewYouTubeSource(ctx context.Context, videoID, apiKey string, opts ...option.ClientOption) (*YouTubeSource, error) {
	if videoID == "" {
		return nil, fmt.Errorf("videoID empty")
	}
	svcOpts := append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	svc, err := youtube.NewService(ctx, svcOpts...)
	if err != nil {
		return nil, fmt.Errorf("youtube service: %w", err)
	}
	res, err := svc.Videos.List([]string{"liveStreamingDetails"}).Id(videoID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("video lookup: %w", err)
	}
	if len(res.Items) == 0 {
		return nil, fmt.Errorf("video %s not found", videoID)
	}
	details := res.Items[0].LiveStreamingDetails
	if details == nil || details.ActiveLiveChatId == "" {
		return nil, fmt.Errorf("video %s has no active live chat", videoID)
	}
	s := &YouTubeSource{svc: svc, liveChatID: details.ActiveLiveChatId}
	s.alive.Store(true)
	slog.Info("youtube chat session opened", slog.String("video_id", videoID), slog.String("component", "chat"))
	return s, nil
}

// Poll fetches the next page of live chat messages. A chat that has ended
// (offlineAt set, or the API rejecting the chat id) marks the source dead.
func (s *YouTubeSource) Poll(ctx context.Context) ([]Message, error) {
	call := s.svc.LiveChatMessages.List(s.liveChatID, []string{"snippet", "authorDetails"}).Context(ctx)
	if s.pageToken != "" {
		call = call.PageToken(s.pageToken)
	}
	res, err := call.Do()
	if err != nil {
		if gerr, ok := err.(*googleapi.Error); ok && (gerr.Code == 403 || gerr.Code == 404) {
			s.alive.Store(false)
			return nil, fmt.Errorf("live chat gone: %w", err)
		}
		return nil, err
	}
	s.pageToken = res.NextPageToken
	if res.OfflineAt != "" {
		s.alive.Store(false)
	}
	out := make([]Message, 0, len(res.Items))
	for _, item := range res.Items {
		if item.Snippet == nil {
			continue
		}
		var author string
		if item.AuthorDetails != nil {
			author = item.AuthorDetails.DisplayName
		}
		out = append(out, Message{Author: author, Text: item.Snippet.DisplayMessage})
	}
	return out, nil
}

// IsAlive reports whether the live chat is still open.
func (s *YouTubeSource) IsAlive() bool {
	return s.alive.Load()
}
