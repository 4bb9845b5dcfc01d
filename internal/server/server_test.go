package server

import (
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/blogdb/server/internal/services"
	"github.com/blogdb/server/internal/session"
	"github.com/blogdb/server/internal/testutil"
	"github.com/blogdb/server/internal/views"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type testApp struct {
	server   *httptest.Server
	users    *testutil.UserRepo
	posts    *testutil.PostRepo
	sessions *session.MemoryStore
}

func newTestApp(t *testing.T, opts services.PostOptions) *testApp {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	users := testutil.NewUserRepo()
	posts := testutil.NewPostRepo()
	store := session.NewMemoryStore()
	manager, err := session.NewManager(store, logger, session.Options{Secret: "test-secret"})
	require.NoError(t, err)
	renderer, err := views.NewRenderer()
	require.NoError(t, err)

	router := NewRouter(Deps{
		AuthService: services.NewAuthService(users, bcrypt.MinCost),
		PostService: services.NewPostService(posts, nil, logger, opts),
		Sessions:    manager,
		Renderer:    renderer,
		Logger:      logger,
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return &testApp{server: srv, users: users, posts: posts, sessions: store}
}

// newClient returns a browser-like client that keeps cookies but does not
// follow redirects.
func (a *testApp) newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

type response struct {
	status   int
	location string
	body     string
}

func (a *testApp) get(t *testing.T, c *http.Client, path string) response {
	t.Helper()
	resp, err := c.Get(a.server.URL + path)
	require.NoError(t, err)
	return readResponse(t, resp)
}

func (a *testApp) post(t *testing.T, c *http.Client, path string, form url.Values) response {
	t.Helper()
	resp, err := c.PostForm(a.server.URL+path, form)
	require.NoError(t, err)
	return readResponse(t, resp)
}

func readResponse(t *testing.T, resp *http.Response) response {
	t.Helper()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return response{status: resp.StatusCode, location: resp.Header.Get("Location"), body: string(body)}
}

func (a *testApp) signupAndSignin(t *testing.T, c *http.Client, name, password string) {
	t.Helper()
	res := a.post(t, c, "/signup", url.Values{"name": {name}, "password": {password}})
	require.Equal(t, http.StatusFound, res.status)
	require.Equal(t, "/signin", res.location)

	res = a.post(t, c, "/signin", url.Values{"name": {name}, "password": {password}})
	require.Equal(t, http.StatusFound, res.status)
	require.Equal(t, "/", res.location)
}

func TestScenario_SignupSigninCreateList(t *testing.T) {
	app := newTestApp(t, services.PostOptions{})
	c := app.newClient(t)

	app.signupAndSignin(t, c, "alice", "pw1")
	require.Equal(t, 1, app.sessions.Len())

	res := app.post(t, c, "/create-post", url.Values{"creator_name": {"alice"}, "title": {"T"}, "body": {"B"}})
	require.Equal(t, http.StatusFound, res.status)
	require.Equal(t, "/", res.location)

	res = app.get(t, c, "/")
	require.Equal(t, http.StatusOK, res.status)
	assert.Contains(t, res.body, "<h2>T</h2>")
	assert.Contains(t, res.body, "by alice")
	assert.Contains(t, res.body, "Signed in as alice")

	user, err := app.users.GetByName(t.Context(), "alice")
	require.NoError(t, err)
	post, err := app.posts.Get(t.Context(), 1)
	require.NoError(t, err)
	assert.Equal(t, "T", post.Title)
	assert.Equal(t, "B", post.Body)
	assert.Equal(t, "alice", post.CreatorName)
	assert.Equal(t, user.ID, post.CreatorUserID)
}

func TestListPosts_NewestFirst(t *testing.T) {
	app := newTestApp(t, services.PostOptions{})
	c := app.newClient(t)
	app.signupAndSignin(t, c, "alice", "pw1")

	app.post(t, c, "/create-post", url.Values{"title": {"FirstPost"}, "body": {"1"}})
	app.post(t, c, "/create-post", url.Values{"title": {"SecondPost"}, "body": {"2"}})

	res := app.get(t, c, "/")
	first := strings.Index(res.body, "FirstPost")
	second := strings.Index(res.body, "SecondPost")
	require.True(t, first > 0 && second > 0)
	assert.Less(t, second, first)
}

func TestSignin_WrongPasswordCreatesNoSession(t *testing.T) {
	app := newTestApp(t, services.PostOptions{})
	c := app.newClient(t)
	app.post(t, c, "/signup", url.Values{"name": {"alice"}, "password": {"pw1"}})

	res := app.post(t, c, "/signin", url.Values{"name": {"alice"}, "password": {"wrong"}})
	assert.Equal(t, http.StatusUnauthorized, res.status)
	assert.Contains(t, res.body, "Invalid username or password. Try again.")
	assert.Zero(t, app.sessions.Len())

	res = app.post(t, c, "/signin", url.Values{"name": {"nobody"}, "password": {"pw1"}})
	assert.Equal(t, http.StatusUnauthorized, res.status)
	assert.Contains(t, res.body, "Invalid username or password. Try again.")
}

func TestSignup_DuplicateNameFails(t *testing.T) {
	app := newTestApp(t, services.PostOptions{})
	c := app.newClient(t)

	res := app.post(t, c, "/signup", url.Values{"name": {"alice"}, "password": {"pw1"}})
	require.Equal(t, http.StatusFound, res.status)

	res = app.post(t, c, "/signup", url.Values{"name": {"alice"}, "password": {"pw2"}})
	assert.Equal(t, http.StatusConflict, res.status)
	assert.Equal(t, "Error during signup.", res.body)
	assert.Equal(t, 1, app.users.Count())
}

func TestSignup_ValidationError(t *testing.T) {
	app := newTestApp(t, services.PostOptions{})
	c := app.newClient(t)

	res := app.post(t, c, "/signup", url.Values{"name": {"  "}, "password": {""}})
	assert.Equal(t, http.StatusBadRequest, res.status)
	assert.Contains(t, res.body, "name is required")
	assert.Contains(t, res.body, "password is required")
	assert.Zero(t, app.users.Count())
}

func TestSignup_MultibytePasswordTooLong(t *testing.T) {
	app := newTestApp(t, services.PostOptions{})
	c := app.newClient(t)

	res := app.post(t, c, "/signup", url.Values{"name": {"alice"}, "password": {strings.Repeat("é", 40)}})
	assert.Equal(t, http.StatusBadRequest, res.status)
	assert.Contains(t, res.body, "password must be at most 72 bytes")
	assert.Zero(t, app.users.Count())
}

func TestCreatePost_RequiresSession(t *testing.T) {
	app := newTestApp(t, services.PostOptions{})
	c := app.newClient(t)

	res := app.get(t, c, "/create-post")
	assert.Equal(t, http.StatusFound, res.status)
	assert.Equal(t, "/signin", res.location)

	res = app.post(t, c, "/create-post", url.Values{"title": {"T"}, "body": {"B"}})
	assert.Equal(t, http.StatusFound, res.status)
	assert.Equal(t, "/signin", res.location)
	assert.Zero(t, app.posts.Count())
}

func TestLogout_ThenProtectedActionRedirects(t *testing.T) {
	app := newTestApp(t, services.PostOptions{})
	c := app.newClient(t)
	app.signupAndSignin(t, c, "alice", "pw1")

	res := app.get(t, c, "/create-post")
	require.Equal(t, http.StatusOK, res.status)

	res = app.get(t, c, "/logout")
	assert.Equal(t, http.StatusFound, res.status)
	assert.Equal(t, "/", res.location)
	assert.Zero(t, app.sessions.Len())

	res = app.post(t, c, "/create-post", url.Values{"title": {"T"}, "body": {"B"}})
	assert.Equal(t, http.StatusFound, res.status)
	assert.Equal(t, "/signin", res.location)
	assert.Zero(t, app.posts.Count())

	// Logging out again is harmless.
	res = app.get(t, c, "/logout")
	assert.Equal(t, http.StatusFound, res.status)
}

func TestEditPost_Flow(t *testing.T) {
	app := newTestApp(t, services.PostOptions{})
	c := app.newClient(t)
	app.signupAndSignin(t, c, "alice", "pw1")
	app.post(t, c, "/create-post", url.Values{"title": {"Old"}, "body": {"old body"}})

	res := app.get(t, c, "/edit-post/1")
	require.Equal(t, http.StatusOK, res.status)
	assert.Contains(t, res.body, `value="Old"`)

	// Edit is reachable without a session.
	anon := app.newClient(t)
	res = app.post(t, anon, "/edit-post/1", url.Values{"title": {"New"}, "body": {"new body"}})
	assert.Equal(t, http.StatusFound, res.status)
	assert.Equal(t, "/", res.location)

	post, err := app.posts.Get(t.Context(), 1)
	require.NoError(t, err)
	assert.Equal(t, "New", post.Title)
	assert.Equal(t, "new body", post.Body)

	res = app.post(t, anon, "/edit-post/99", url.Values{"title": {"X"}, "body": {"Y"}})
	assert.Equal(t, http.StatusFound, res.status)
	assert.Equal(t, 1, app.posts.Count())
}

func TestEditPostPage_NotFound(t *testing.T) {
	app := newTestApp(t, services.PostOptions{})
	c := app.newClient(t)

	res := app.get(t, c, "/edit-post/42")
	assert.Equal(t, http.StatusNotFound, res.status)
	assert.Equal(t, "Post not found.", res.body)

	res = app.get(t, c, "/edit-post/abc")
	assert.Equal(t, http.StatusNotFound, res.status)
}

func TestDeletePost_Flow(t *testing.T) {
	app := newTestApp(t, services.PostOptions{})
	c := app.newClient(t)
	app.signupAndSignin(t, c, "alice", "pw1")
	app.post(t, c, "/create-post", url.Values{"title": {"KeepMe"}, "body": {"k"}})
	app.post(t, c, "/create-post", url.Values{"title": {"DropMe"}, "body": {"d"}})

	anon := app.newClient(t)
	res := app.post(t, anon, "/delete-post/2", nil)
	assert.Equal(t, http.StatusFound, res.status)
	assert.Equal(t, 1, app.posts.Count())

	res = app.post(t, anon, "/delete-post/2", nil)
	assert.Equal(t, http.StatusFound, res.status)
	assert.Equal(t, 1, app.posts.Count())

	res = app.get(t, anon, "/")
	assert.NotContains(t, res.body, "DropMe")
	assert.Contains(t, res.body, "KeepMe")

	res = app.post(t, anon, "/delete-post/zero", nil)
	assert.Equal(t, http.StatusBadRequest, res.status)
}

func TestOwnershipEnforced(t *testing.T) {
	app := newTestApp(t, services.PostOptions{EnforceOwnership: true})
	owner := app.newClient(t)
	app.signupAndSignin(t, owner, "alice", "pw1")
	app.post(t, owner, "/create-post", url.Values{"title": {"Mine"}, "body": {"b"}})

	anon := app.newClient(t)
	res := app.post(t, anon, "/delete-post/1", nil)
	assert.Equal(t, http.StatusFound, res.status)
	assert.Equal(t, "/signin", res.location)

	other := app.newClient(t)
	app.signupAndSignin(t, other, "bob", "pw2")
	res = app.get(t, other, "/edit-post/1")
	assert.Equal(t, http.StatusForbidden, res.status)
	assert.NotContains(t, res.body, `value="Mine"`)

	res = app.get(t, owner, "/edit-post/1")
	assert.Equal(t, http.StatusOK, res.status)
	assert.Contains(t, res.body, `value="Mine"`)

	res = app.post(t, other, "/edit-post/1", url.Values{"title": {"Hijack"}, "body": {"x"}})
	assert.Equal(t, http.StatusForbidden, res.status)
	res = app.post(t, other, "/delete-post/1", nil)
	assert.Equal(t, http.StatusForbidden, res.status)
	assert.Equal(t, 1, app.posts.Count())

	res = app.post(t, owner, "/delete-post/1", nil)
	assert.Equal(t, http.StatusFound, res.status)
	assert.Zero(t, app.posts.Count())
}

func TestStoreFailureIsGenericMessage(t *testing.T) {
	app := newTestApp(t, services.PostOptions{})
	c := app.newClient(t)
	app.posts.Err = assert.AnError

	res := app.get(t, c, "/")
	assert.Equal(t, http.StatusInternalServerError, res.status)
	assert.Equal(t, "Error retrieving blog posts.", res.body)

	res = app.post(t, c, "/edit-post/1", url.Values{"title": {"t"}, "body": {"b"}})
	assert.Equal(t, http.StatusInternalServerError, res.status)
	assert.Equal(t, "Error updating blog post.", res.body)

	res = app.post(t, c, "/delete-post/1", nil)
	assert.Equal(t, "Error deleting blog post.", res.body)
}

func TestHealthzAndStatic(t *testing.T) {
	app := newTestApp(t, services.PostOptions{})
	c := app.newClient(t)

	res := app.get(t, c, "/healthz")
	assert.Equal(t, http.StatusOK, res.status)
	assert.Equal(t, "ok", res.body)

	res = app.get(t, c, "/static/styles.css")
	assert.Equal(t, http.StatusOK, res.status)
	assert.Contains(t, res.body, "font-family")
}
