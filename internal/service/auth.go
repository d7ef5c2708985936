package service

import (
	"context"
	"fmt"

	"github.com/Skotchmaster/forum_api/internal/events"
	"github.com/Skotchmaster/forum_api/internal/hash"
	"github.com/Skotchmaster/forum_api/internal/logging"
	"github.com/Skotchmaster/forum_api/internal/models"
	"github.com/Skotchmaster/forum_api/internal/repo"
	"github.com/Skotchmaster/forum_api/internal/revocation"
	"github.com/Skotchmaster/forum_api/internal/tokens"
)

type AuthService struct {
	Repo    *repo.GormRepo
	Tokens  *tokens.Service
	Revoked revocation.Store
	Events  events.Publisher
	Index   BoardIndexer
}

type LoginResult struct {
	No    uint   `json:"no"`
	ID    string `json:"id"`
	Nick  string `json:"nick"`
	Token string `json:"token"`
}

func (s *AuthService) Join(ctx context.Context, id, nick, password string) error {
	l := logging.FromContext(ctx).With("svc", "auth.join")

	if id == "" {
		return fail(ErrValidation, "ID missing")
	}
	exists, err := s.Repo.LoginIDExists(ctx, id)
	if err != nil {
		return fmt.Errorf("check id: %w", err)
	}
	if exists {
		return fail(ErrConflict, "ID exists!")
	}

	if nick == "" {
		return fail(ErrValidation, "NICK missing")
	}
	exists, err = s.Repo.NickExists(ctx, nick)
	if err != nil {
		return fmt.Errorf("check nick: %w", err)
	}
	if exists {
		return fail(ErrConflict, "NICK exists!")
	}

	if password == "" {
		return fail(ErrValidation, "PASSWORD missing")
	}

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user := models.User{LoginID: id, Nick: nick, PasswordHash: pwHash}
	if err := s.Repo.CreateUser(ctx, &user); err != nil {
		// A concurrent join may have taken the id or nick after the checks above.
		if conflict := s.joinConflict(ctx, id, nick); conflict != nil {
			return conflict
		}
		return fmt.Errorf("create user: %w", err)
	}

	l.Info("user_joined", "user_no", user.No)
	publish(ctx, s.Events, events.TopicUser, events.Event{Type: "user_joined", UserNo: user.No, Nick: user.Nick})
	return nil
}

func (s *AuthService) joinConflict(ctx context.Context, id, nick string) error {
	if exists, err := s.Repo.LoginIDExists(ctx, id); err == nil && exists {
		return fail(ErrConflict, "ID exists!")
	}
	if exists, err := s.Repo.NickExists(ctx, nick); err == nil && exists {
		return fail(ErrConflict, "NICK exists!")
	}
	return nil
}

func (s *AuthService) Login(ctx context.Context, id, password string) (*LoginResult, error) {
	if id == "" {
		return nil, fail(ErrValidation, "ID missing")
	}
	if password == "" {
		return nil, fail(ErrValidation, "PASSWORD missing")
	}

	user, err := s.Repo.FindUserByLoginID(ctx, id)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, fail(ErrNotFound, "Cannot find User")
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if !hash.CheckPassword(user.PasswordHash, password) {
		return nil, fail(ErrBadPassword, "Wrong Password")
	}

	token, _, err := s.Tokens.Issue(tokens.Identity{No: user.No, ID: user.LoginID, Nick: user.Nick})
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	publish(ctx, s.Events, events.TopicUser, events.Event{Type: "user_logged_in", UserNo: user.No})
	return &LoginResult{No: user.No, ID: user.LoginID, Nick: user.Nick, Token: token}, nil
}

// Authenticate resolves a raw token into claims, rejecting revoked ones.
func (s *AuthService) Authenticate(ctx context.Context, raw string) (*tokens.Claims, error) {
	if raw == "" {
		return nil, fail(ErrUnauthorized, "Unauthorized")
	}
	claims, err := s.Tokens.Verify(raw)
	if err != nil {
		return nil, fail(ErrInvalidToken, "Invalid Token")
	}

	revoked, err := s.Revoked.IsRevoked(ctx, claims.JTI())
	if err != nil {
		return nil, fmt.Errorf("check revocation: %w", err)
	}
	if revoked {
		return nil, fail(ErrInvalidToken, "Invalid Token")
	}
	return claims, nil
}

func (s *AuthService) Logout(ctx context.Context, claims *tokens.Claims) error {
	if claims == nil || claims.JTI() == "" {
		return fail(ErrUnauthorized, "Unauthorized")
	}
	if err := s.Revoked.Revoke(ctx, claims.JTI(), claims.Expiry()); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}

	publish(ctx, s.Events, events.TopicUser, events.Event{Type: "user_logged_out", UserNo: claims.No})
	return nil
}

// Withdraw deletes the caller with all of their content and revokes the presented token.
func (s *AuthService) Withdraw(ctx context.Context, claims *tokens.Claims) error {
	l := logging.FromContext(ctx).With("svc", "auth.withdraw")

	if err := s.Repo.DeleteUser(ctx, claims.No); err != nil {
		if repo.IsNotFound(err) {
			return fail(ErrNotFound, "Cannot find User")
		}
		return fmt.Errorf("delete user: %w", err)
	}
	if err := s.Revoked.Revoke(ctx, claims.JTI(), claims.Expiry()); err != nil {
		l.Error("revoke_after_withdraw_failed", "user_no", claims.No, "error", err)
	}
	if s.Index != nil {
		indexed(ctx, "delete_by_author", s.Index.DeleteByAuthor(ctx, claims.No))
	}

	l.Info("user_withdrawn", "user_no", claims.No)
	publish(ctx, s.Events, events.TopicUser, events.Event{Type: "user_withdrawn", UserNo: claims.No})
	return nil
}
