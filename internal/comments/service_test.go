package comments_test

import (
	"context"
	"errors"
	"testing"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/abolfazlirani/asar-backend-app/internal/comments"
	"github.com/abolfazlirani/asar-backend-app/internal/content"
	"github.com/abolfazlirani/asar-backend-app/pkg/testsupport"
)

type fixture struct {
	content  content.Service
	comments comments.Service
	repo     *comments.BunRepository
	article  *content.Article
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testsupport.NewBunDB(t,
		(*content.Article)(nil),
		(*content.Category)(nil),
		(*comments.Comment)(nil),
		(*comments.CommentVote)(nil),
	)
	clock := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	tick := func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	repo := comments.NewBunRepository(db)
	contentSvc := content.NewService(content.NewBunArticleRepository(db), content.NewBunCategoryRepository(db), content.WithClock(tick))
	commentSvc := comments.NewService(repo, contentSvc, comments.WithClock(tick))

	body := "body"
	article, err := contentSvc.CreateArticle(context.Background(), content.CreateArticleRequest{
		Title: "post", PostType: content.PostTypeArticle, Content: &body,
	})
	if err != nil {
		t.Fatalf("create article: %v", err)
	}
	return &fixture{content: contentSvc, comments: commentSvc, repo: repo, article: article}
}

func (f *fixture) comment(t *testing.T, text string, parent *uuid.UUID, active bool) *comments.Comment {
	t.Helper()
	ctx := context.Background()
	created, err := f.comments.Create(ctx, comments.CreateCommentRequest{
		UserID: uuid.New(), ArticleID: f.article.ID, Content: text, ParentID: parent,
	})
	if err != nil {
		t.Fatalf("create comment: %v", err)
	}
	if created.IsActive {
		t.Fatalf("new comments must await moderation")
	}
	if active {
		if created, err = f.comments.Update(ctx, comments.UpdateCommentRequest{ID: created.ID, IsActive: &active}); err != nil {
			t.Fatalf("activate: %v", err)
		}
	}
	return created
}

func TestCreateValidatesReferences(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var verrs validation.Errors
	if _, err := f.comments.Create(ctx, comments.CreateCommentRequest{UserID: uuid.New()}); !errors.As(err, &verrs) {
		t.Fatalf("expected validation errors, got %v", err)
	}

	var missingArticle *content.NotFoundError
	if _, err := f.comments.Create(ctx, comments.CreateCommentRequest{UserID: uuid.New(), ArticleID: uuid.New(), Content: "hi"}); !errors.As(err, &missingArticle) {
		t.Fatalf("expected article not found, got %v", err)
	}

	parent := uuid.New()
	var missingParent *comments.NotFoundError
	_, err := f.comments.Create(ctx, comments.CreateCommentRequest{UserID: uuid.New(), ArticleID: f.article.ID, Content: "hi", ParentID: &parent})
	if !errors.As(err, &missingParent) || missingParent.Resource != "parent comment" {
		t.Fatalf("expected parent not found, got %v", err)
	}
}

func TestVoteTransitions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := uuid.New()
	comment := f.comment(t, "hello", nil, true)

	steps := []struct {
		status  comments.VoteStatus
		outcome comments.VoteOutcome
		after   comments.VoteStatus
	}{
		{comments.VoteNone, comments.VoteUnchanged, comments.VoteNone},
		{comments.VoteLike, comments.VoteCreated, comments.VoteLike},
		{comments.VoteDislike, comments.VoteUpdated, comments.VoteDislike},
		{comments.VoteDislike, comments.VoteRemoved, comments.VoteNone},
		{comments.VoteLike, comments.VoteCreated, comments.VoteLike},
		{comments.VoteNone, comments.VoteRemoved, comments.VoteNone},
	}
	for i, step := range steps {
		result, err := f.comments.Vote(ctx, user, comment.ID, step.status)
		if err != nil {
			t.Fatalf("step %d: vote: %v", i, err)
		}
		if result.Outcome != step.outcome {
			t.Fatalf("step %d: expected %s, got %s", i, step.outcome, result.Outcome)
		}
		status, err := f.comments.VoteStatus(ctx, user, comment.ID)
		if err != nil {
			t.Fatalf("step %d: status: %v", i, err)
		}
		if status != step.after {
			t.Fatalf("step %d: expected status %s, got %s", i, step.after, status)
		}
	}

	if _, err := f.comments.Vote(ctx, user, comment.ID, "love"); err == nil {
		t.Fatalf("expected invalid status error")
	}
}

func TestListForArticleBuildsThreads(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	viewer := uuid.New()

	older := f.comment(t, "older", nil, true)
	newer := f.comment(t, "newer", nil, true)
	f.comment(t, "pending", nil, false)
	reply := f.comment(t, "reply", &older.ID, true)
	f.comment(t, "pending reply", &older.ID, false)

	if _, err := f.comments.Vote(ctx, viewer, older.ID, comments.VoteLike); err != nil {
		t.Fatalf("vote: %v", err)
	}
	if _, err := f.comments.Vote(ctx, uuid.New(), older.ID, comments.VoteDislike); err != nil {
		t.Fatalf("vote: %v", err)
	}
	if _, err := f.comments.Vote(ctx, viewer, reply.ID, comments.VoteDislike); err != nil {
		t.Fatalf("vote: %v", err)
	}

	list, err := f.comments.ListForArticle(ctx, f.article.ID, &viewer, 1, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if list.Metadata.TotalCount != 2 || len(list.Comments) != 2 {
		t.Fatalf("expected 2 active threads, got %d", len(list.Comments))
	}
	if list.Comments[0].ID != newer.ID {
		t.Fatalf("expected newest thread first")
	}
	if list.Comments[0].UserLikeStatus != comments.VoteNone || len(list.Comments[0].Replies) != 0 {
		t.Fatalf("unexpected newer thread %+v", list.Comments[0])
	}
	thread := list.Comments[1]
	if thread.LikesCount != 1 || thread.DislikesCount != 1 || thread.UserLikeStatus != comments.VoteLike {
		t.Fatalf("unexpected counters %+v", thread.CommentView)
	}
	if len(thread.Replies) != 1 || thread.Replies[0].ID != reply.ID || thread.Replies[0].UserLikeStatus != comments.VoteDislike {
		t.Fatalf("unexpected replies %+v", thread.Replies)
	}

	anonymous, err := f.comments.ListForArticle(ctx, f.article.ID, nil, 1, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if anonymous.Comments[1].UserLikeStatus != "" {
		t.Fatalf("anonymous listings carry no viewer status")
	}

	count, err := f.comments.CountActive(ctx, f.article.ID)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 active comments, got %d", count)
	}
}

func TestModerationListAndDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	root := f.comment(t, "root", nil, true)
	reply := f.comment(t, "reply", &root.ID, false)
	if _, err := f.comments.Vote(ctx, uuid.New(), reply.ID, comments.VoteLike); err != nil {
		t.Fatalf("vote: %v", err)
	}

	inactive := false
	pending, err := f.comments.ListAll(ctx, &inactive, 1, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(pending.Comments) != 1 || pending.Comments[0].ID != reply.ID {
		t.Fatalf("expected only the pending reply, got %+v", pending.Comments)
	}
	all, err := f.comments.ListAll(ctx, nil, 1, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if all.Metadata.TotalCount != 2 {
		t.Fatalf("expected 2 comments, got %d", all.Metadata.TotalCount)
	}

	if err := f.comments.Delete(ctx, root.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	var notFound *comments.NotFoundError
	if _, err := f.repo.GetByID(ctx, reply.ID); !errors.As(err, &notFound) {
		t.Fatalf("replies are removed with their parent, got %v", err)
	}
	counts, err := f.repo.VoteCounts(ctx, []uuid.UUID{reply.ID})
	if err != nil {
		t.Fatalf("counts: %v", err)
	}
	if counts[reply.ID].Likes != 0 {
		t.Fatalf("votes are removed with the comment")
	}
}

func TestDeleteArticleDataRemovesThreads(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	root := f.comment(t, "root", nil, true)
	f.comment(t, "reply", &root.ID, true)

	if err := f.comments.DeleteArticleData(ctx, f.article.ID); err != nil {
		t.Fatalf("delete article data: %v", err)
	}
	all, err := f.comments.ListAll(ctx, nil, 1, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if all.Metadata.TotalCount != 0 {
		t.Fatalf("expected no comments left, got %d", all.Metadata.TotalCount)
	}
}
