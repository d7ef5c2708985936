package service

import (
	"context"
	"fmt"

	"github.com/Skotchmaster/forum_api/internal/events"
	"github.com/Skotchmaster/forum_api/internal/models"
	"github.com/Skotchmaster/forum_api/internal/repo"
)

type CommentService struct {
	Repo   *repo.GormRepo
	Events events.Publisher
}

func (s *CommentService) Get(ctx context.Context, kind models.Kind, no uint) (*models.Comment, error) {
	comment, err := s.Repo.GetComment(ctx, kind, no)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, fail(ErrNotFound, "Cannot find a Comment")
		}
		return nil, fmt.Errorf("get comment: %w", err)
	}
	return comment, nil
}

func (s *CommentService) Create(ctx context.Context, kind models.Kind, authorNo, boardNo uint, content string) (*models.Comment, error) {
	if boardNo == 0 {
		return nil, fail(ErrValidation, "Board No missing")
	}
	if content == "" {
		return nil, fail(ErrValidation, "CONTENT missing")
	}
	if _, err := s.Repo.FindBoard(ctx, kind, boardNo); err != nil {
		if repo.IsNotFound(err) {
			return nil, fail(ErrNotFound, "Not Found")
		}
		return nil, fmt.Errorf("find board: %w", err)
	}

	comment := models.Comment{BoardNo: boardNo, AuthorNo: authorNo, Content: content}
	if err := s.Repo.CreateComment(ctx, kind, &comment); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}

	s.published(ctx, kind, &comment, "comment_created")
	return &comment, nil
}

func (s *CommentService) Update(ctx context.Context, kind models.Kind, callerNo, no uint, content string) (*models.Comment, error) {
	if content == "" {
		return nil, fail(ErrValidation, "CONTENT missing")
	}
	if _, err := s.checkOwner(ctx, kind, callerNo, no); err != nil {
		return nil, err
	}

	comment, err := s.Repo.UpdateComment(ctx, kind, no, content)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, fail(ErrNotFound, "Not Found")
		}
		return nil, fmt.Errorf("update comment: %w", err)
	}

	s.published(ctx, kind, comment, "comment_updated")
	return comment, nil
}

func (s *CommentService) Delete(ctx context.Context, kind models.Kind, callerNo, no uint) error {
	comment, err := s.checkOwner(ctx, kind, callerNo, no)
	if err != nil {
		return err
	}
	if err := s.Repo.DeleteComment(ctx, kind, no); err != nil {
		if repo.IsNotFound(err) {
			return fail(ErrNotFound, "Not Found")
		}
		return fmt.Errorf("delete comment: %w", err)
	}

	s.published(ctx, kind, comment, "comment_deleted")
	return nil
}

func (s *CommentService) checkOwner(ctx context.Context, kind models.Kind, callerNo, no uint) (*models.Comment, error) {
	comment, err := s.Repo.FindComment(ctx, kind, no)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, fail(ErrNotFound, "Not Found")
		}
		return nil, fmt.Errorf("find comment: %w", err)
	}
	if comment.AuthorNo != callerNo {
		return nil, fail(ErrNotAuthor, "No Author")
	}
	return comment, nil
}

func (s *CommentService) published(ctx context.Context, kind models.Kind, c *models.Comment, typ string) {
	publish(ctx, s.Events, events.TopicComment, events.Event{
		Type:      typ,
		Kind:      string(kind),
		BoardNo:   c.BoardNo,
		CommentNo: c.No,
		UserNo:    c.AuthorNo,
	})
}
