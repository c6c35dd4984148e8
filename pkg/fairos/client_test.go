package fairos

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestClient spins up a fake dfs server and returns a client bound to it.
func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New(srv.URL)
	require.NoError(t, err)
	return c
}

// loggedIn seeds a session token for username and returns it.
func loggedIn(c *Client, username string) string {
	token := "tok-" + username
	c.Sessions().Set(username, token)
	return token
}

func TestNewRejectsEmptyBaseURL(t *testing.T) {
	_, err := New("")
	assert.Error(t, err)
}

func TestNoSession(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected without a session")
	})

	_, err := c.ListPods(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestRemoteErrorKeepsDomainAndMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message": "pod open: pod does not exist", "code": 400}`))
	})
	loggedIn(c, "alice")

	err := c.OpenPod(context.Background(), "alice", "nope", "pw")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPod)

	msg, ok := RemoteMessage(err)
	require.True(t, ok)
	assert.Equal(t, "pod open: pod does not exist", msg)
}

func TestTransportErrorMapsToCouldNotConnect(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c, err := New(srv.URL)
	require.NoError(t, err)
	loggedIn(c, "alice")

	_, err = c.ListPods(context.Background(), "alice")
	assert.ErrorIs(t, err, ErrCouldNotConnect)
}

func TestWithSessionStore(t *testing.T) {
	store := NewMemorySessionStore()
	store.Set("alice", "preseeded")

	c, err := New(DefaultBaseURL, WithSessionStore(store))
	require.NoError(t, err)

	token, ok := c.Sessions().Get("alice")
	require.True(t, ok)
	assert.Equal(t, "preseeded", token)
}
