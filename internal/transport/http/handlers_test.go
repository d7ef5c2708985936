package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/forum_api/internal/db"
	"github.com/Skotchmaster/forum_api/internal/events"
	"github.com/Skotchmaster/forum_api/internal/repo"
	"github.com/Skotchmaster/forum_api/internal/revocation"
	"github.com/Skotchmaster/forum_api/internal/service"
	"github.com/Skotchmaster/forum_api/internal/tokens"
)

type testEnv struct {
	T    *testing.T
	E    *echo.Echo
	Repo *repo.GormRepo
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
	pub := events.Nop{}
	auth := &service.AuthService{
		Repo:    r,
		Tokens:  tokens.NewService([]byte("test-secret"), time.Hour),
		Revoked: revocation.NewMemory(),
		Events:  pub,
	}

	e := echo.New()
	e.HTTPErrorHandler = ErrorHandler
	Register(e, &Deps{
		Ready:       func(ctx context.Context) error { return db.Ping(ctx, gdb) },
		Auth:        auth,
		AuthHTTP:    &AuthHTTP{Svc: auth},
		UserHTTP:    &UserHTTP{Svc: &service.UserService{Repo: r, Events: pub}},
		BoardHTTP:   &BoardHTTP{Svc: &service.BoardService{Repo: r, Events: pub}},
		CommentHTTP: &CommentHTTP{Svc: &service.CommentService{Repo: r, Events: pub}},
		SearchHTTP:  &SearchHTTP{Svc: &service.SearchService{Backend: &service.DBSearcher{Repo: r}}},
	})
	return &testEnv{T: t, E: e, Repo: r}
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Message     string          `json:"message"`
	Data        json.RawMessage `json:"data"`
	BoardsCount int64           `json:"boardsCount"`
	AllCounts   int64           `json:"allCounts"`
}

func (env *testEnv) do(method, path, token string, body any) (int, apiResponse) {
	env.T.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(env.T, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, token)
	}
	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)

	var resp apiResponse
	if rec.Body.Len() > 0 && rec.Body.Bytes()[0] == '{' {
		require.NoError(env.T, json.Unmarshal(rec.Body.Bytes(), &resp))
	}
	return rec.Code, resp
}

func (env *testEnv) login(id, nick string) string {
	env.T.Helper()

	code, _ := env.do(http.MethodPost, "/api/auth/local/join", "", map[string]string{"id": id, "nick": nick, "password": "p"})
	require.Equal(env.T, http.StatusCreated, code)

	code, resp := env.do(http.MethodPost, "/api/auth/login", "", map[string]string{"id": id, "password": "p"})
	require.Equal(env.T, http.StatusOK, code)

	var data struct {
		Token string `json:"token"`
	}
	require.NoError(env.T, json.Unmarshal(resp.Data, &data))
	require.NotEmpty(env.T, data.Token)
	return data.Token
}

func TestEndToEnd_JoinLoginPost(t *testing.T) {
	env := newTestEnv(t)

	code, resp := env.do(http.MethodPost, "/api/auth/local/join", "", map[string]string{"id": "t1", "nick": "n1", "password": "p"})
	require.Equal(t, http.StatusCreated, code)
	assert.True(t, resp.OK)

	code, resp = env.do(http.MethodPost, "/api/auth/login", "", map[string]string{"id": "t1", "password": "p"})
	require.Equal(t, http.StatusOK, code)
	var login struct {
		Token string `json:"token"`
		Nick  string `json:"nick"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &login))
	require.NotEmpty(t, login.Token)
	assert.Equal(t, "n1", login.Nick)

	code, resp = env.do(http.MethodGet, "/api/board/free?page=1", "", nil)
	require.Equal(t, http.StatusNotFound, code)
	assert.False(t, resp.OK)
	assert.Equal(t, "Not Found", resp.Message)

	code, resp = env.do(http.MethodPost, "/api/board/free", login.Token, map[string]string{"title": "T", "content": "C"})
	require.Equal(t, http.StatusCreated, code)
	var board struct {
		No     uint   `json:"no"`
		Title  string `json:"title"`
		Author struct {
			Nick string `json:"nick"`
		} `json:"author"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &board))
	assert.Equal(t, "T", board.Title)
	assert.Equal(t, "n1", board.Author.Nick)

	code, resp = env.do(http.MethodGet, "/api/board/free?page=1", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, int64(1), resp.BoardsCount)
	assert.Equal(t, int64(1), resp.AllCounts)

	code, resp = env.do(http.MethodGet, fmt.Sprintf("/api/board/free/%d", board.No), "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(resp.Data), `"comments":[]`)
}

func TestJoin_Conflicts(t *testing.T) {
	env := newTestEnv(t)
	env.login("t1", "n1")

	code, resp := env.do(http.MethodPost, "/api/auth/local/join", "", map[string]string{"id": "t1", "nick": "other", "password": "p"})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "ID exists!", resp.Message)

	code, resp = env.do(http.MethodPost, "/api/auth/local/join", "", map[string]string{"id": "t2", "nick": "n1", "password": "p"})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "NICK exists!", resp.Message)

	code, resp = env.do(http.MethodPost, "/api/auth/local/join", "", map[string]string{"nick": "x", "password": "p"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "ID missing", resp.Message)
}

func TestJoin_ConcurrentDuplicateID(t *testing.T) {
	env := newTestEnv(t)

	const n = 8
	codes := make([]int, n)
	messages := make([]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			body := fmt.Sprintf(`{"id":"dup","nick":"nick%d","password":"p"}`, i)
			req := httptest.NewRequest(http.MethodPost, "/api/auth/local/join", strings.NewReader(body))
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			rec := httptest.NewRecorder()
			env.E.ServeHTTP(rec, req)

			var resp apiResponse
			_ = json.Unmarshal(rec.Body.Bytes(), &resp)
			codes[i], messages[i] = rec.Code, resp.Message
		}(i)
	}
	wg.Wait()

	created := 0
	for i, code := range codes {
		if code == http.StatusCreated {
			created++
			continue
		}
		assert.Equal(t, http.StatusConflict, code)
		assert.Equal(t, "ID exists!", messages[i])
	}
	assert.Equal(t, 1, created)
}

func TestLogin_WrongPassword(t *testing.T) {
	env := newTestEnv(t)
	env.login("t1", "n1")

	code, resp := env.do(http.MethodPost, "/api/auth/login", "", map[string]string{"id": "t1", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Wrong Password", resp.Message)
	assert.Empty(t, resp.Data)

	code, resp = env.do(http.MethodPost, "/api/auth/login", "", map[string]string{"id": "ghost", "password": "p"})
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Cannot find User", resp.Message)
}

func TestProtectedRoutes_TokenChecks(t *testing.T) {
	env := newTestEnv(t)
	token := env.login("t1", "n1")
	body := map[string]string{"title": "T", "content": "C"}

	code, resp := env.do(http.MethodPost, "/api/board/free", "", body)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Unauthorized", resp.Message)

	code, resp = env.do(http.MethodPost, "/api/board/free", "Bearer ", body)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Unauthorized", resp.Message)

	tampered := []byte(token)
	tampered[len(tampered)/2] ^= 0x01
	code, resp = env.do(http.MethodPost, "/api/board/free", string(tampered), body)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Invalid Token", resp.Message)

	code, _ = env.do(http.MethodPost, "/api/board/free", "Bearer "+token, body)
	assert.Equal(t, http.StatusCreated, code)
}

func TestLogout_RevokesToken(t *testing.T) {
	env := newTestEnv(t)
	token := env.login("t1", "n1")

	code, _ := env.do(http.MethodPost, "/api/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, code)

	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/api/board/free"},
		{http.MethodPost, "/api/users"},
		{http.MethodPost, "/api/auth/logout"},
		{http.MethodPost, "/api/auth/local/withdraw"},
	} {
		code, resp := env.do(tc.method, tc.path, token, map[string]string{"title": "T", "content": "C"})
		assert.Equal(t, http.StatusUnauthorized, code, tc.path)
		assert.Equal(t, "Invalid Token", resp.Message, tc.path)
	}
}

func TestBoard_OwnerMismatch(t *testing.T) {
	env := newTestEnv(t)
	owner := env.login("owner", "owner")
	other := env.login("other", "other")

	code, resp := env.do(http.MethodPost, "/api/board/qna", owner, map[string]string{"title": "T", "content": "C"})
	require.Equal(t, http.StatusCreated, code)
	var board struct {
		No uint `json:"no"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &board))
	path := fmt.Sprintf("/api/board/qna/%d", board.No)

	code, resp = env.do(http.MethodPut, path, other, map[string]string{"title": "X", "content": "X"})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "No Author", resp.Message)

	code, resp = env.do(http.MethodDelete, path, other, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "No Author", resp.Message)

	stored, err := env.Repo.FindBoard(context.Background(), "qna", board.No)
	require.NoError(t, err)
	assert.Equal(t, "T", stored.Title)
	assert.Equal(t, "C", stored.Content)

	code, resp = env.do(http.MethodPut, "/api/board/qna/999", owner, map[string]string{"title": "X", "content": "X"})
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Cannot find Board with 999", resp.Message)
}

func TestListAndSearch_IncludeCommentAuthors(t *testing.T) {
	env := newTestEnv(t)
	owner := env.login("owner", "owner")
	reader := env.login("reader", "reader")

	_, resp := env.do(http.MethodPost, "/api/board/free", owner, map[string]string{"title": "Topic", "content": "C"})
	var board struct {
		No uint `json:"no"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &board))
	code, _ := env.do(http.MethodPost, "/api/comment/free", reader, map[string]any{"boardNo": board.No, "content": "hi"})
	require.Equal(t, http.StatusCreated, code)

	readerUser, err := env.Repo.FindUserByLoginID(context.Background(), "reader")
	require.NoError(t, err)

	type row struct {
		No       uint `json:"no"`
		Comments []struct {
			AuthorNo uint `json:"author_no"`
		} `json:"comments"`
	}
	for _, path := range []string{
		"/api/board/free?page=1",
		"/api/search?board=free&cat=title&key=Topic&page=1",
	} {
		code, resp := env.do(http.MethodGet, path, "", nil)
		require.Equal(t, http.StatusOK, code, path)

		var rows []row
		require.NoError(t, json.Unmarshal(resp.Data, &rows), path)
		require.Len(t, rows, 1, path)
		require.Len(t, rows[0].Comments, 1, path)
		assert.Equal(t, readerUser.No, rows[0].Comments[0].AuthorNo, path)
	}
}

func TestComment_Flow(t *testing.T) {
	env := newTestEnv(t)
	owner := env.login("owner", "owner")
	other := env.login("other", "other")

	_, resp := env.do(http.MethodPost, "/api/board/free", owner, map[string]string{"title": "T", "content": "C"})
	var board struct {
		No uint `json:"no"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &board))

	code, resp := env.do(http.MethodPost, "/api/comment/free", other, map[string]any{"content": "hi"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Board No missing", resp.Message)

	code, resp = env.do(http.MethodPost, "/api/comment/free", other, map[string]any{"boardNo": board.No, "content": "hi"})
	require.Equal(t, http.StatusCreated, code)
	var comment struct {
		No uint `json:"no"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &comment))
	path := fmt.Sprintf("/api/comment/free/%d", comment.No)

	code, resp = env.do(http.MethodPatch, path, owner, map[string]any{"content": "edited"})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "No Author", resp.Message)

	code, _ = env.do(http.MethodPatch, path, other, map[string]any{"content": "edited"})
	assert.Equal(t, http.StatusOK, code)

	code, resp = env.do(http.MethodGet, path, "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(resp.Data), `"content":"edited"`)

	code, resp = env.do(http.MethodGet, "/api/recent/free", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(resp.Data), `"comments":[{"author_no":`)

	code, _ = env.do(http.MethodDelete, path, other, nil)
	assert.Equal(t, http.StatusOK, code)

	code, resp = env.do(http.MethodGet, path, "", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Cannot find a Comment", resp.Message)

	code, resp = env.do(http.MethodGet, "/api/recent/qna", "", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "no data", resp.Message)
}

func TestPagination_RejectsBadPage(t *testing.T) {
	env := newTestEnv(t)

	for _, p := range []string{"", "&page=0", "&page=-1", "&page=abc"} {
		code, resp := env.do(http.MethodGet, "/api/board/free?x=1"+p, "", nil)
		assert.Equal(t, http.StatusBadRequest, code, p)
		assert.Equal(t, "Page No missing", resp.Message, p)

		code, resp = env.do(http.MethodGet, "/api/search?board=free&cat=title&key=x"+p, "", nil)
		assert.Equal(t, http.StatusBadRequest, code, p)
		assert.Equal(t, "Page missing", resp.Message, p)
	}
}

func TestSearch_Categories(t *testing.T) {
	env := newTestEnv(t)
	alice := env.login("alice", "alice")
	bob := env.login("bob", "bobby")

	env.do(http.MethodPost, "/api/board/free", alice, map[string]string{"title": "go tips", "content": "plain"})
	env.do(http.MethodPost, "/api/board/free", bob, map[string]string{"title": "misc", "content": "more go here"})

	tests := []struct {
		query string
		code  int
		count int64
		msg   string
	}{
		{query: "board=free&cat=nick&key=bob&page=1", code: http.StatusOK, count: 1},
		{query: "board=free&cat=title&key=go&page=1", code: http.StatusOK, count: 1},
		{query: "board=free&cat=content&key=go&page=1", code: http.StatusOK, count: 1},
		{query: "board=free&cat=author_no&key=1&page=1", code: http.StatusBadRequest, msg: "Invalid Category"},
		{query: "board=free&cat=title&key=zzz&page=1", code: http.StatusNotFound, msg: "Not Found"},
		{query: "cat=title&key=go&page=1", code: http.StatusBadRequest, msg: "Board missing"},
	}

	for _, tt := range tests {
		code, resp := env.do(http.MethodGet, "/api/search?"+tt.query, "", nil)
		assert.Equal(t, tt.code, code, tt.query)
		if tt.msg != "" {
			assert.Equal(t, tt.msg, resp.Message, tt.query)
			continue
		}
		assert.Equal(t, tt.count, resp.BoardsCount, tt.query)
		assert.Equal(t, int64(2), resp.AllCounts, tt.query)
	}
}

func TestUsers_Endpoints(t *testing.T) {
	env := newTestEnv(t)
	token := env.login("t1", "n1")
	env.login("t2", "n2")

	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var users []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &users))
	require.Len(t, users, 2)
	assert.NotContains(t, users[0], "password")

	code, resp := env.do(http.MethodPost, "/api/users", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(resp.Data), `"freeBoardCount":0`)

	code, resp = env.do(http.MethodPatch, "/api/users", token, map[string]string{"nick": "n2"})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "NICK exists!", resp.Message)

	code, _ = env.do(http.MethodPatch, "/api/users", token, map[string]string{"nick": "fresh"})
	assert.Equal(t, http.StatusOK, code)

	code, resp = env.do(http.MethodGet, "/api/users/ghost", "", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Cannot find User", resp.Message)
}

func TestWithdraw(t *testing.T) {
	env := newTestEnv(t)
	token := env.login("t1", "n1")
	env.do(http.MethodPost, "/api/board/free", token, map[string]string{"title": "T", "content": "C"})

	code, _ := env.do(http.MethodPost, "/api/auth/local/withdraw", token, nil)
	require.Equal(t, http.StatusOK, code)

	code, _ = env.do(http.MethodGet, "/api/board/free?page=1", "", nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, resp := env.do(http.MethodPost, "/api/auth/login", "", map[string]string{"id": "t1", "password": "p"})
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Cannot find User", resp.Message)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	code, _ := env.do(http.MethodGet, "/health/live", "", nil)
	assert.Equal(t, http.StatusOK, code)
	code, _ = env.do(http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusOK, code)
}
