package service

import (
	"context"
	"strings"
	"time"

	"novelhub/internal/backend"
	"novelhub/internal/backend/realtime"
	"novelhub/internal/models"
	"novelhub/internal/repository"
)

type CommentView struct {
	models.Comment
	Username       string  `json:"username"`
	ProfilePicture *string `json:"profile_picture,omitempty"`
}

// Subscriber streams row changes; *realtime.Client implements it.
type Subscriber interface {
	Subscribe(ctx context.Context, sub realtime.Subscription) (<-chan realtime.Change, error)
}

type CommentService interface {
	ListByChapter(ctx context.Context, chapterID string) ([]CommentView, error)
	Post(ctx context.Context, userID, chapterID, content string) (*models.Comment, error)
	// Watch delivers comments posted on the chapter until ctx ends.
	Watch(ctx context.Context, chapterID string) (<-chan models.Comment, error)
}

type commentService struct {
	comments repository.CommentRepository
	users    repository.UserRepository
	live     Subscriber
	now      func() time.Time
	run      runner
}

func NewCommentService(comments repository.CommentRepository, users repository.UserRepository, live Subscriber, opts Options) CommentService {
	return &commentService{comments: comments, users: users, live: live, now: time.Now, run: newRunner(opts)}
}

func (s *commentService) ListByChapter(ctx context.Context, chapterID string) ([]CommentView, error) {
	views, err := fetch(ctx, s.run, "Loading comments", func(ctx context.Context) ([]CommentView, error) {
		comments, err := s.comments.ListByChapter(ctx, chapterID)
		if err != nil {
			return nil, err
		}
		ids := make([]string, len(comments))
		for i, c := range comments {
			ids[i] = c.UserID
		}
		authors, err := profilesByID(ctx, s.users, ids)
		if err != nil {
			return nil, err
		}
		out := make([]CommentView, len(comments))
		for i, c := range comments {
			out[i] = CommentView{Comment: c}
			if p, ok := authors[c.UserID]; ok {
				out[i].Username = p.Username
				out[i].ProfilePicture = p.ProfilePicture
			}
		}
		return out, nil
	})
	return views, s.run.report(ctx, err, "")
}

func (s *commentService) Post(ctx context.Context, userID, chapterID, content string) (*models.Comment, error) {
	if userID == "" {
		return nil, invalid("user", "Please login to comment")
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, invalid("content", "Comment cannot be empty")
	}

	comment := &models.Comment{
		ChapterID: chapterID,
		UserID:    userID,
		Content:   content,
		CreatedAt: nowPtr(s.now()),
	}
	err := exec(ctx, s.run, "Posting comment", func(ctx context.Context) error {
		return s.comments.Create(ctx, comment)
	})
	if err != nil {
		return nil, s.run.report(ctx, err, "")
	}
	return comment, s.run.report(ctx, nil, "Comment posted successfully!")
}

func (s *commentService) Watch(ctx context.Context, chapterID string) (<-chan models.Comment, error) {
	if s.live == nil {
		return nil, invalid("realtime", "Live updates are not configured")
	}
	sub := realtime.Subscription{
		Schema: "public",
		Table:  models.Comment{}.TableName(),
		Event:  "INSERT",
		Filter: "chapter_id=eq." + chapterID,
	}
	if creds, ok := backend.CredentialsFrom(ctx); ok {
		sub.AccessToken = creds.AccessToken
	}

	changes, err := s.live.Subscribe(ctx, sub)
	if err != nil {
		return nil, s.run.report(ctx, err, "")
	}

	out := make(chan models.Comment)
	go func() {
		defer close(out)
		for change := range changes {
			var c models.Comment
			if err := change.Decode(&c); err != nil {
				s.run.opts.Logger.WarnContext(ctx, "undecodable comment change", "error", err)
				continue
			}
			select {
			case out <- c:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}
