package di

import (
	"context"

	command "github.com/goliatone/go-command"
	"github.com/google/uuid"

	"github.com/abolfazlirani/asar-backend-app/internal/commands"
	"github.com/abolfazlirani/asar-backend-app/internal/content"
	"github.com/abolfazlirani/asar-backend-app/internal/metrics"
	"github.com/abolfazlirani/asar-backend-app/pkg/interfaces"
)

// articleEngagement feeds engagement and comment data into the content
// service. The services are looked up on each call because they are built
// after the content service they depend on.
type articleEngagement struct {
	container *Container
}

var (
	_ content.ArticleStats   = (*articleEngagement)(nil)
	_ content.ArticleCascade = (*articleEngagement)(nil)
)

func (a *articleEngagement) ArticleStats(ctx context.Context, articleID uuid.UUID, viewer *uuid.UUID) (content.Stats, error) {
	var stats content.Stats
	if svc := a.container.engagementSvc; svc != nil {
		summary, err := svc.Summary(ctx, articleID, viewer)
		if err != nil {
			return content.Stats{}, err
		}
		stats.Likes = summary.Likes
		stats.Bookmarks = summary.Bookmarks
		stats.IsLiked = summary.IsLiked
		stats.IsBookmarked = summary.IsBookmarked
	}
	if svc := a.container.commentSvc; svc != nil {
		count, err := svc.CountActive(ctx, articleID)
		if err != nil {
			return content.Stats{}, err
		}
		stats.Comments = count
	}
	return stats, nil
}

// DeleteArticleData removes comments first so votes go with them, then
// likes and bookmarks.
func (a *articleEngagement) DeleteArticleData(ctx context.Context, articleID uuid.UUID) error {
	if svc := a.container.commentSvc; svc != nil {
		if err := svc.DeleteArticleData(ctx, articleID); err != nil {
			return err
		}
	}
	if svc := a.container.engagementSvc; svc != nil {
		return svc.DeleteArticleData(ctx, articleID)
	}
	return nil
}

// recordTelemetry logs like commands.DefaultTelemetry and also counts the
// outcome when metrics are enabled.
func recordTelemetry[T command.Message](logger interfaces.Logger, m *metrics.Metrics) commands.Telemetry[T] {
	base := commands.DefaultTelemetry[T](logger)
	return func(ctx context.Context, msg T, info commands.TelemetryInfo) {
		base(ctx, msg, info)
		if m != nil {
			m.CommandExecuted(info.Command, string(info.Status))
		}
	}
}
