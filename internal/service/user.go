package service

import (
	"context"
	"fmt"

	"github.com/Skotchmaster/forum_api/internal/events"
	"github.com/Skotchmaster/forum_api/internal/models"
	"github.com/Skotchmaster/forum_api/internal/repo"
)

type UserService struct {
	Repo   *repo.GormRepo
	Events events.Publisher
	Index  BoardIndexer
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	return s.Repo.ListUsers(ctx)
}

func (s *UserService) GetByLoginID(ctx context.Context, id string) (*models.User, error) {
	user, err := s.Repo.FindUserByLoginID(ctx, id)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, fail(ErrNotFound, "Cannot find User")
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

func (s *UserService) Info(ctx context.Context, no uint) (*models.UserInfo, error) {
	info, err := s.Repo.UserInfo(ctx, no)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, fail(ErrNotFound, "Cannot find User")
		}
		return nil, fmt.Errorf("user info: %w", err)
	}
	return info, nil
}

func (s *UserService) UpdateNick(ctx context.Context, no uint, nick string) error {
	if nick == "" {
		return fail(ErrValidation, "NICK missing")
	}
	exists, err := s.Repo.NickExists(ctx, nick)
	if err != nil {
		return fmt.Errorf("check nick: %w", err)
	}
	if exists {
		return fail(ErrConflict, "NICK exists!")
	}

	if err := s.Repo.UpdateNick(ctx, no, nick); err != nil {
		if repo.IsNotFound(err) {
			return fail(ErrNotFound, "Cannot find User")
		}
		if repo.IsDuplicate(err) {
			return fail(ErrConflict, "NICK exists!")
		}
		return fmt.Errorf("update nick: %w", err)
	}

	if s.Index != nil {
		indexed(ctx, "update_author_nick", s.Index.UpdateAuthorNick(ctx, no, nick))
	}
	publish(ctx, s.Events, events.TopicUser, events.Event{Type: "user_nick_changed", UserNo: no, Nick: nick})
	return nil
}
