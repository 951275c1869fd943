package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"blogGraph/crud"
	"blogGraph/database/dbtest"
	"blogGraph/domain"
	bloghttp "blogGraph/http"
)

type testServer struct {
	t        *testing.T
	url      string
	services *crud.Services
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db := dbtest.Open(t)
	services, err := crud.NewServices(db.Gorm,
		crud.WithUser("pepper", "hmac-secret"),
		crud.WithPost(),
		crud.WithComment(),
		crud.WithFollow(),
		crud.WithLike(),
	)
	require.NoError(t, err)

	srv := httptest.NewServer(bloghttp.NewServer(services).Handler())
	t.Cleanup(srv.Close)
	return &testServer{t: t, url: srv.URL, services: services}
}

// do sends a request with an optional json body and bearer token, decodes the
// response into out (if given) and returns the status code.
func (ts *testServer) do(method, path, token string, body, out interface{}) int {
	ts.t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(ts.t, err)
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, ts.url+path, reader)
	require.NoError(ts.t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res, err := http.DefaultClient.Do(req)
	require.NoError(ts.t, err)
	defer res.Body.Close()
	if out != nil {
		require.NoError(ts.t, json.NewDecoder(res.Body).Decode(out))
	}
	return res.StatusCode
}

// signup registers a user over http, logs them in and returns their id and token.
func (ts *testServer) signup(username string) (string, string) {
	ts.t.Helper()
	var user domain.User
	code := ts.do("POST", "/user", "", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "correct horse",
	}, &user)
	require.Equal(ts.t, http.StatusCreated, code)

	var tok struct {
		Token string `json:"token"`
		UID   string `json:"uid"`
	}
	code = ts.do("POST", "/authenticate", "", map[string]string{
		"username": username,
		"password": "correct horse",
	}, &tok)
	require.Equal(ts.t, http.StatusOK, code)
	require.Equal(ts.t, user.ID, tok.UID)
	return tok.UID, tok.Token
}

type errorBody struct {
	Error string `json:"error"`
}

func TestAuthenticate(t *testing.T) {
	ts := newTestServer(t)
	id, token := ts.signup("kiki")
	require.NotEmpty(t, token)

	var e errorBody
	code := ts.do("POST", "/authenticate", "", map[string]string{"username": "kiki", "password": "nope"}, &e)
	require.Equal(t, http.StatusUnauthorized, code)
	require.Equal(t, "Invalid username or password.", e.Error)

	// A bad token on a guarded route is a 401, on a public one it doesn't matter.
	code = ts.do("PUT", "/user/"+id, "garbage", map[string]string{"avatar": "x.png"}, nil)
	require.Equal(t, http.StatusUnauthorized, code)
	code = ts.do("GET", "/user/"+id, "garbage", nil, nil)
	require.Equal(t, http.StatusOK, code)
}

func TestUserRoutes(t *testing.T) {
	ts := newTestServer(t)
	kiki, kikiToken := ts.signup("kiki")
	_, bobToken := ts.signup("bob")

	var user domain.User
	require.Equal(t, http.StatusOK, ts.do("GET", "/user/"+kiki, "", nil, &user))
	require.Equal(t, "kiki", user.Username)

	var body map[string]interface{}
	require.Equal(t, http.StatusOK, ts.do("GET", "/user/"+kiki, "", nil, &body))
	require.NotContains(t, body, "password_hash")
	require.NotContains(t, body, "remember_hash")

	require.Equal(t, http.StatusConflict, ts.do("POST", "/user", "", map[string]string{
		"username": "kiki", "password": "correct horse",
	}, nil))
	require.Equal(t, http.StatusBadRequest, ts.do("GET", "/user/not-a-uuid", "", nil, nil))
	require.Equal(t, http.StatusNotFound, ts.do("GET", "/user/"+uuid.NewString(), "", nil, nil))

	require.Equal(t, http.StatusForbidden, ts.do("PUT", "/user/"+kiki, bobToken, map[string]string{"avatar": "evil.png"}, nil))
	require.Equal(t, http.StatusOK, ts.do("PUT", "/user/"+kiki, kikiToken, map[string]string{"avatar": "new.png"}, &user))
	require.Equal(t, "new.png", user.Avatar)
	require.Equal(t, "kiki@example.com", user.Email)

	var users []domain.User
	require.Equal(t, http.StatusOK, ts.do("GET", "/users", "", nil, &users))
	require.Len(t, users, 2)

	require.Equal(t, http.StatusForbidden, ts.do("DELETE", "/user/"+kiki, bobToken, nil, nil))
	require.Equal(t, http.StatusNoContent, ts.do("DELETE", "/user/"+kiki, kikiToken, nil, nil))
	require.Equal(t, http.StatusNotFound, ts.do("GET", "/user/"+kiki, "", nil, nil))

	// The deleted user's token is worthless now.
	require.Equal(t, http.StatusUnauthorized, ts.do("PUT", "/user/"+kiki, kikiToken, map[string]string{"avatar": "x.png"}, nil))
}

func TestPostRoutes(t *testing.T) {
	ts := newTestServer(t)
	kiki, kikiToken := ts.signup("kiki")
	bob, bobToken := ts.signup("bob")

	var post domain.Post
	require.Equal(t, http.StatusUnauthorized, ts.do("POST", "/user/"+kiki+"/post", "", map[string]string{"title": "t"}, nil))
	require.Equal(t, http.StatusForbidden, ts.do("POST", "/user/"+kiki+"/post", bobToken, map[string]string{"title": "t"}, nil))
	require.Equal(t, http.StatusCreated, ts.do("POST", "/user/"+kiki+"/post", kikiToken, map[string]string{
		"title": "hello", "content": "world",
	}, &post))
	require.Equal(t, kiki, post.UserID)

	postPath := fmt.Sprintf("/user/%s/post/%s", kiki, post.ID)
	require.Equal(t, http.StatusOK, ts.do("PUT", postPath, kikiToken, map[string]string{"content": "everyone"}, &post))
	require.Equal(t, "hello", post.Title)
	require.Equal(t, "everyone", post.Content)
	require.Equal(t, http.StatusForbidden, ts.do("PUT", postPath, bobToken, map[string]string{"content": "mine"}, nil))

	var got domain.Post
	require.Equal(t, http.StatusOK, ts.do("GET", "/post/"+post.ID, "", nil, &got))
	require.Equal(t, "everyone", got.Content)

	var posts []domain.Post
	require.Equal(t, http.StatusOK, ts.do("GET", "/user/"+kiki+"/post", "", nil, &posts))
	require.Len(t, posts, 1)
	require.Equal(t, http.StatusOK, ts.do("GET", "/posts", "", nil, &posts))
	require.Len(t, posts, 1)
	require.Equal(t, http.StatusOK, ts.do("GET", "/posts?page=5&size=10", "", nil, &posts))
	require.Empty(t, posts)
	require.Equal(t, http.StatusBadRequest, ts.do("GET", "/posts?sort=title", "", nil, nil))
	require.Equal(t, http.StatusBadRequest, ts.do("GET", "/posts?size=abc", "", nil, nil))
	require.Equal(t, http.StatusBadRequest, ts.do("GET", "/posts?size=0", "", nil, nil))

	// Likes.
	likePath := fmt.Sprintf("/user/%s/like/post/%s", bob, post.ID)
	require.Equal(t, http.StatusOK, ts.do("GET", likePath, bobToken, nil, nil))
	require.Equal(t, http.StatusConflict, ts.do("GET", likePath, bobToken, nil, nil))
	require.Equal(t, http.StatusForbidden, ts.do("GET", likePath, kikiToken, nil, nil))
	var count struct {
		Count int `json:"count"`
	}
	require.Equal(t, http.StatusOK, ts.do("GET", "/post/"+post.ID+"/likes", "", nil, &count))
	require.Equal(t, 1, count.Count)
	require.Equal(t, http.StatusNoContent, ts.do("DELETE", likePath, bobToken, nil, nil))
	require.Equal(t, http.StatusNotFound, ts.do("DELETE", likePath, bobToken, nil, nil))

	require.Equal(t, http.StatusNoContent, ts.do("DELETE", postPath, kikiToken, nil, nil))
	require.Equal(t, http.StatusNotFound, ts.do("GET", "/post/"+post.ID, "", nil, nil))
}

func TestCommentRoutes(t *testing.T) {
	ts := newTestServer(t)
	kiki, kikiToken := ts.signup("kiki")
	bob, bobToken := ts.signup("bob")

	var post domain.Post
	require.Equal(t, http.StatusCreated, ts.do("POST", "/user/"+kiki+"/post", kikiToken, map[string]string{"title": "hello"}, &post))

	var comment domain.Comment
	commentsPath := fmt.Sprintf("/user/%s/post/%s/comment", bob, post.ID)
	require.Equal(t, http.StatusCreated, ts.do("POST", commentsPath, bobToken, map[string]string{"content": "nice"}, &comment))
	require.Equal(t, post.ID, comment.PostID)
	require.Equal(t, bob, comment.UserID)

	missing := fmt.Sprintf("/user/%s/post/%s/comment", bob, uuid.NewString())
	require.Equal(t, http.StatusNotFound, ts.do("POST", missing, bobToken, map[string]string{"content": "lost"}, nil))

	commentPath := commentsPath + "/" + comment.ID
	require.Equal(t, http.StatusOK, ts.do("PUT", commentPath, bobToken, map[string]string{"content": "very nice"}, &comment))
	require.Equal(t, "very nice", comment.Content)
	require.Equal(t, http.StatusForbidden, ts.do("PUT", commentPath, kikiToken, map[string]string{"content": "meh"}, nil))

	var comments []domain.Comment
	require.Equal(t, http.StatusOK, ts.do("GET", "/post/"+post.ID+"/comment", "", nil, &comments))
	require.Len(t, comments, 1)

	likePath := fmt.Sprintf("/user/%s/like/comment/%s", kiki, comment.ID)
	require.Equal(t, http.StatusOK, ts.do("GET", likePath, kikiToken, nil, nil))
	var count struct {
		Count int `json:"count"`
	}
	require.Equal(t, http.StatusOK, ts.do("GET", "/comment/"+comment.ID+"/likes", "", nil, &count))
	require.Equal(t, 1, count.Count)
	require.Equal(t, http.StatusNoContent, ts.do("DELETE", likePath, kikiToken, nil, nil))

	require.Equal(t, http.StatusNoContent, ts.do("DELETE", commentPath, bobToken, nil, nil))
	require.Equal(t, http.StatusNotFound, ts.do("GET", "/comment/"+comment.ID, "", nil, nil))
}

func TestFollowRoutes(t *testing.T) {
	ts := newTestServer(t)
	alice, aliceToken := ts.signup("alice")
	bob, bobToken := ts.signup("bob")
	carol, carolToken := ts.signup("carol")

	follow := func(from, to, token string) int {
		return ts.do("GET", fmt.Sprintf("/user/%s/follow/%s", from, to), token, nil, nil)
	}
	require.Equal(t, http.StatusOK, follow(alice, bob, aliceToken))
	require.Equal(t, http.StatusOK, follow(bob, alice, bobToken))
	require.Equal(t, http.StatusOK, follow(carol, alice, carolToken))
	require.Equal(t, http.StatusConflict, follow(alice, bob, aliceToken))
	require.Equal(t, http.StatusBadRequest, follow(alice, alice, aliceToken))
	require.Equal(t, http.StatusForbidden, follow(alice, carol, carolToken))
	require.Equal(t, http.StatusNotFound, follow(alice, uuid.NewString(), aliceToken))

	var users []domain.User
	require.Equal(t, http.StatusOK, ts.do("GET", "/user/"+alice+"/follower", aliceToken, nil, &users))
	require.Len(t, users, 2)
	require.ElementsMatch(t, []string{"bob", "carol"}, []string{users[0].Username, users[1].Username})
	require.Equal(t, http.StatusOK, ts.do("GET", "/user/"+alice+"/following", aliceToken, nil, &users))
	require.Len(t, users, 1)
	require.Equal(t, "bob", users[0].Username)
	require.Equal(t, http.StatusForbidden, ts.do("GET", "/user/"+alice+"/following", carolToken, nil, nil))

	unfollow := fmt.Sprintf("/user/%s/follow/%s", alice, bob)
	require.Equal(t, http.StatusNoContent, ts.do("DELETE", unfollow, aliceToken, nil, nil))
	require.Equal(t, http.StatusNotFound, ts.do("DELETE", unfollow, aliceToken, nil, nil))
	require.Equal(t, http.StatusOK, ts.do("GET", "/user/"+alice+"/following", aliceToken, nil, &users))
	require.Empty(t, users)
}

func TestAdminActsForOthers(t *testing.T) {
	ts := newTestServer(t)
	kiki, _ := ts.signup("kiki")
	_, rootToken := ts.signup("root")

	require.Equal(t, http.StatusForbidden, ts.do("POST", "/user/"+kiki+"/post", rootToken, map[string]string{"title": "for kiki"}, nil))

	// Roles are read on every request, so the promotion applies to the token at hand.
	_, err := ts.services.User.Promote(context.Background(), "root")
	require.NoError(t, err)

	var post domain.Post
	require.Equal(t, http.StatusCreated, ts.do("POST", "/user/"+kiki+"/post", rootToken, map[string]string{"title": "for kiki"}, &post))
	require.Equal(t, kiki, post.UserID)
}

func TestMetricsAndUnknownRoutes(t *testing.T) {
	ts := newTestServer(t)
	id, token := ts.signup("kiki")

	var e errorBody
	require.Equal(t, http.StatusNotFound, ts.do("GET", "/nowhere", "", nil, &e))
	require.NotEmpty(t, e.Error)

	e = errorBody{}
	require.Equal(t, http.StatusMethodNotAllowed, ts.do("PATCH", "/user/"+id, token, nil, &e))
	require.Equal(t, "PATCH is not allowed here.", e.Error)

	res, err := http.Get(ts.url + "/metrics")
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)
	b, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	require.True(t, strings.Contains(string(b), "blog_http_requests_total"))
	require.True(t, strings.Contains(string(b), `route="unmatched"`))
	require.True(t, strings.Contains(string(b), `code="405"`))
}
