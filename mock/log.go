package mock

import (
	"context"

	"github.com/kmichalik/embedtrace"
)

var _ embedtrace.EmbedLog = (*EmbedLog)(nil)

// EmbedLog is a mock implementation of embedtrace.EmbedLog.
type EmbedLog struct {
	PostURLsFn           func(ctx context.Context) (map[string]struct{}, error)
	AppendEmbedsFn       func(ctx context.Context, embeds []*embedtrace.Embed) error
	UpdateRepostStatusFn func(ctx context.Context, id string, status embedtrace.RepostStatus) error
	PendingRepostsFn     func(ctx context.Context) ([]*embedtrace.PendingRepost, error)
}

func (l *EmbedLog) PostURLs(ctx context.Context) (map[string]struct{}, error) {
	return l.PostURLsFn(ctx)
}

func (l *EmbedLog) AppendEmbeds(ctx context.Context, embeds []*embedtrace.Embed) error {
	return l.AppendEmbedsFn(ctx, embeds)
}

func (l *EmbedLog) UpdateRepostStatus(ctx context.Context, id string, status embedtrace.RepostStatus) error {
	return l.UpdateRepostStatusFn(ctx, id, status)
}

func (l *EmbedLog) PendingReposts(ctx context.Context) ([]*embedtrace.PendingRepost, error) {
	return l.PendingRepostsFn(ctx)
}
