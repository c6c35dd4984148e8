package fairos

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePod(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/pod/new", r.URL.Path)

		var payload map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "demo", payload["pod_name"])
		assert.Equal(t, "pw", payload["password"])
		w.Write([]byte(`{"message": "pod created", "code": 201}`))
	})
	loggedIn(c, "alice")

	require.NoError(t, c.CreatePod(context.Background(), "alice", "demo", "pw"))
}

func TestSyncPodOmitsPassword(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/pod/sync", r.URL.Path)

		var payload map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		_, hasPassword := payload["password"]
		assert.False(t, hasPassword)
		w.Write([]byte(`{"message": "synced", "code": 200}`))
	})
	loggedIn(c, "alice")

	require.NoError(t, c.SyncPod(context.Background(), "alice", "demo"))
}

func TestSharePod(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/pod/share", r.URL.Path)
		w.Write([]byte(`{"pod_sharing_reference": "ref-123"}`))
	})
	loggedIn(c, "alice")

	ref, err := c.SharePod(context.Background(), "alice", "demo", "pw")
	require.NoError(t, err)
	assert.Equal(t, "ref-123", ref)
}

func TestDeletePod(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		require.Equal(t, "/pod/delete", r.URL.Path)
		w.Write([]byte(`{"message": "deleted", "code": 200}`))
	})
	loggedIn(c, "alice")

	require.NoError(t, c.DeletePod(context.Background(), "alice", "demo", "pw"))
}

func TestPodExists(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/pod/present", r.URL.Path)
		assert.Equal(t, "pod_name=demo", r.URL.RawQuery)
		w.Write([]byte(`{"present": false}`))
	})
	loggedIn(c, "alice")

	present, err := c.PodExists(context.Background(), "alice", "demo")
	require.NoError(t, err)
	assert.False(t, present)
}

func TestListPods(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/pod/ls", r.URL.Path)
		w.Write([]byte(`{"pod_name": ["demo", "photos"], "shared_pod_name": ["team"]}`))
	})
	loggedIn(c, "alice")

	pods, err := c.ListPods(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"demo", "photos"}, pods.Pods)
	assert.Equal(t, []string{"team"}, pods.SharedPods)
}

func TestStatPod(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/pod/stat", r.URL.Path)
		w.Write([]byte(`{"pod_name": "demo", "address": "0xpod"}`))
	})
	loggedIn(c, "alice")

	info, err := c.StatPod(context.Background(), "alice", "demo")
	require.NoError(t, err)
	assert.Equal(t, &PodInfo{Name: "demo", Address: "0xpod"}, info)
}

func TestReceiveSharedPod(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/pod/receive", r.URL.Path)
		assert.Equal(t, "sharing_ref=ref-123", r.URL.RawQuery)
		w.Write([]byte(`{"message": "pod received", "code": 200}`))
	})
	loggedIn(c, "bob")

	require.NoError(t, c.ReceiveSharedPod(context.Background(), "bob", "ref-123"))
}

func TestSharedPodDetails(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/pod/receiveinfo", r.URL.Path)
		w.Write([]byte(`{
			"pod_name": "demo",
			"pod_address": "0xpod",
			"user_name": "alice",
			"user_address": "0xalice",
			"shared_time": "1693483200"
		}`))
	})
	loggedIn(c, "bob")

	info, err := c.SharedPodDetails(context.Background(), "bob", "ref-123")
	require.NoError(t, err)
	assert.Equal(t, "demo", info.Name)
	assert.Equal(t, "alice", info.UserName)
	assert.Equal(t, "1693483200", info.SharedTime)
}
