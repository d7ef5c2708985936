package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/forum_api/internal/db"
	"github.com/Skotchmaster/forum_api/internal/events"
	"github.com/Skotchmaster/forum_api/internal/repo"
	"github.com/Skotchmaster/forum_api/internal/revocation"
	"github.com/Skotchmaster/forum_api/internal/tokens"
)

type testEnv struct {
	Repo     *repo.GormRepo
	Revoked  *revocation.Memory
	Events   *events.Recorder
	Auth     *AuthService
	Users    *UserService
	Boards   *BoardService
	Comments *CommentService
	Search   *SearchService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	gdb, err := db.Open(context.Background(), "sqlite", dsn)
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	r := repo.New(gdb)
	rec := &events.Recorder{}
	mem := revocation.NewMemory()
	return &testEnv{
		Repo:    r,
		Revoked: mem,
		Events:  rec,
		Auth: &AuthService{
			Repo:    r,
			Tokens:  tokens.NewService([]byte("test-secret"), time.Hour),
			Revoked: mem,
			Events:  rec,
		},
		Users:    &UserService{Repo: r, Events: rec},
		Boards:   &BoardService{Repo: r, Events: rec},
		Comments: &CommentService{Repo: r, Events: rec},
		Search:   &SearchService{Backend: &DBSearcher{Repo: r}},
	}
}

// joinAndLogin registers a user and returns the verified claims of a fresh token.
func (env *testEnv) joinAndLogin(t *testing.T, id, nick string) (*tokens.Claims, string) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, env.Auth.Join(ctx, id, nick, "pw"))
	res, err := env.Auth.Login(ctx, id, "pw")
	require.NoError(t, err)

	claims, err := env.Auth.Authenticate(ctx, res.Token)
	require.NoError(t, err)
	return claims, res.Token
}
