package engagement_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/abolfazlirani/asar-backend-app/internal/content"
	"github.com/abolfazlirani/asar-backend-app/internal/engagement"
	"github.com/abolfazlirani/asar-backend-app/pkg/testsupport"
)

type fixture struct {
	content    content.Service
	engagement engagement.Service
	repo       *engagement.BunRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testsupport.NewBunDB(t,
		(*content.Article)(nil),
		(*content.Category)(nil),
		(*engagement.ArticleLike)(nil),
		(*engagement.ArticleBookmark)(nil),
	)
	clock := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	tick := func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	repo := engagement.NewBunRepository(db)
	contentSvc := content.NewService(
		content.NewBunArticleRepository(db),
		content.NewBunCategoryRepository(db),
		content.WithClock(tick),
		content.WithArticleCascade(engagementCascade{repo: repo}),
	)
	return &fixture{
		content:    contentSvc,
		engagement: engagement.NewService(repo, contentSvc, engagement.WithClock(tick)),
		repo:       repo,
	}
}

type engagementCascade struct {
	repo *engagement.BunRepository
}

func (c engagementCascade) DeleteArticleData(ctx context.Context, id uuid.UUID) error {
	return c.repo.DeleteByArticle(ctx, id)
}

func (f *fixture) article(t *testing.T, title string) *content.Article {
	t.Helper()
	body := "body"
	article, err := f.content.CreateArticle(context.Background(), content.CreateArticleRequest{
		Title: title, PostType: content.PostTypeArticle, Content: &body,
	})
	if err != nil {
		t.Fatalf("create article: %v", err)
	}
	return article
}

func TestToggleLikeFlipsState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := uuid.New()
	article := f.article(t, "post")

	first, err := f.engagement.Toggle(ctx, engagement.KindLike, user, article.ID)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if !first.Active || first.Reaction == nil || first.Reaction.ArticleID != article.ID {
		t.Fatalf("expected like to be created, got %+v", first)
	}
	liked, err := f.engagement.Status(ctx, engagement.KindLike, user, article.ID)
	if err != nil || !liked {
		t.Fatalf("expected liked status, got %v %v", liked, err)
	}
	bookmarked, err := f.engagement.Status(ctx, engagement.KindBookmark, user, article.ID)
	if err != nil || bookmarked {
		t.Fatalf("likes and bookmarks are independent, got %v %v", bookmarked, err)
	}

	second, err := f.engagement.Toggle(ctx, engagement.KindLike, user, article.ID)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if second.Active {
		t.Fatalf("second toggle should remove the like")
	}
	if liked, _ := f.engagement.Status(ctx, engagement.KindLike, user, article.ID); liked {
		t.Fatalf("expected like removed")
	}
}

func TestToggleRejectsInactiveArticle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	article := f.article(t, "post")
	inactive := false
	if _, err := f.content.UpdateArticle(ctx, content.UpdateArticleRequest{ID: article.ID, IsActive: &inactive}); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	var notFound *content.NotFoundError
	if _, err := f.engagement.Toggle(ctx, engagement.KindBookmark, uuid.New(), article.ID); !errors.As(err, &notFound) {
		t.Fatalf("expected article not found, got %v", err)
	}
}

func TestListArticlesSkipsInactiveAndOrdersByReaction(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := uuid.New()

	older := f.article(t, "older")
	newer := f.article(t, "newer")
	hidden := f.article(t, "hidden")
	for _, id := range []uuid.UUID{newer.ID, older.ID, hidden.ID} {
		if _, err := f.engagement.Toggle(ctx, engagement.KindBookmark, user, id); err != nil {
			t.Fatalf("bookmark: %v", err)
		}
	}
	inactive := false
	if _, err := f.content.UpdateArticle(ctx, content.UpdateArticleRequest{ID: hidden.ID, IsActive: &inactive}); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	list, err := f.engagement.ListArticles(ctx, engagement.KindBookmark, user, 1, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if list.Metadata.TotalCount != 2 || len(list.Articles) != 2 {
		t.Fatalf("expected 2 active bookmarks, got %d (%d)", len(list.Articles), list.Metadata.TotalCount)
	}
	if list.Articles[0].ID != older.ID || list.Articles[1].ID != newer.ID {
		t.Fatalf("expected most recent bookmark first")
	}

	admin, err := f.engagement.ListAll(ctx, engagement.KindBookmark, &user, 1, 0)
	if err != nil {
		t.Fatalf("admin list: %v", err)
	}
	if admin.Metadata.TotalCount != 3 {
		t.Fatalf("admin listing includes inactive articles, got %d", admin.Metadata.TotalCount)
	}
}

func TestSummaryAndCascade(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	viewer := uuid.New()
	article := f.article(t, "post")

	for _, user := range []uuid.UUID{viewer, uuid.New(), uuid.New()} {
		if _, err := f.engagement.Toggle(ctx, engagement.KindLike, user, article.ID); err != nil {
			t.Fatalf("like: %v", err)
		}
	}
	if _, err := f.engagement.Toggle(ctx, engagement.KindBookmark, uuid.New(), article.ID); err != nil {
		t.Fatalf("bookmark: %v", err)
	}

	summary, err := f.engagement.Summary(ctx, article.ID, &viewer)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.Likes != 3 || summary.Bookmarks != 1 || !summary.IsLiked || summary.IsBookmarked {
		t.Fatalf("unexpected summary %+v", summary)
	}

	likers, err := f.engagement.ListForArticle(ctx, engagement.KindLike, article.ID, 1, 2)
	if err != nil {
		t.Fatalf("likers: %v", err)
	}
	if len(likers.Items) != 2 || likers.Metadata.TotalCount != 3 || !likers.Metadata.HasNextPage {
		t.Fatalf("unexpected likers page %+v", likers.Metadata)
	}

	if err := f.content.DeleteArticle(ctx, article.ID); err != nil {
		t.Fatalf("delete article: %v", err)
	}
	count, err := f.repo.Count(ctx, engagement.KindLike, article.ID)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("likes should be removed with the article, got %d", count)
	}
}
