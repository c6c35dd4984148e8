package fairos

import (
	"context"

	"github.com/fairos-dfs/sdk-go/internal/httpx"
)

// PodInfo describes an open pod.
type PodInfo struct {
	Name    string `json:"pod_name"`
	Address string `json:"address"`
}

// PodList names the user's own pods and the pods shared with it.
type PodList struct {
	Pods       []string `json:"pod_name"`
	SharedPods []string `json:"shared_pod_name"`
}

// SharedPodInfo describes a pod sharing reference before it is received.
type SharedPodInfo struct {
	Name        string `json:"pod_name"`
	Address     string `json:"pod_address"`
	UserName    string `json:"user_name"`
	UserAddress string `json:"user_address"`
	SharedTime  string `json:"shared_time"`
}

type podSharingResponse struct {
	Reference string `json:"pod_sharing_reference"`
}

// CreatePod creates and opens a new pod for the user.
func (c *Client) CreatePod(ctx context.Context, username, pod, password string) error {
	return c.podPost(ctx, username, "/pod/new", pod, password)
}

// OpenPod opens an existing pod.
func (c *Client) OpenPod(ctx context.Context, username, pod, password string) error {
	return c.podPost(ctx, username, "/pod/open", pod, password)
}

// SyncPod flushes local pod state to the storage layer.
func (c *Client) SyncPod(ctx context.Context, username, pod string) error {
	return c.podPost(ctx, username, "/pod/sync", pod, "")
}

// ClosePod closes an open pod.
func (c *Client) ClosePod(ctx context.Context, username, pod string) error {
	return c.podPost(ctx, username, "/pod/close", pod, "")
}

func (c *Client) podPost(ctx context.Context, username, path, pod, password string) error {
	token, err := c.token(username)
	if err != nil {
		return err
	}
	payload := map[string]string{"pod_name": pod}
	if password != "" {
		payload["password"] = password
	}
	if _, err := c.post(ctx, path, payload, token, nil); err != nil {
		return mapError(err, ErrPod)
	}
	return nil
}

// SharePod makes the pod shareable and returns the sharing reference.
func (c *Client) SharePod(ctx context.Context, username, pod, password string) (string, error) {
	token, err := c.token(username)
	if err != nil {
		return "", err
	}
	payload := map[string]string{"pod_name": pod, "password": password}
	var out podSharingResponse
	if _, err := c.post(ctx, "/pod/share", payload, token, &out); err != nil {
		return "", mapError(err, ErrPod)
	}
	return out.Reference, nil
}

// DeletePod removes the pod and everything inside it.
func (c *Client) DeletePod(ctx context.Context, username, pod, password string) error {
	token, err := c.token(username)
	if err != nil {
		return err
	}
	payload := map[string]string{"pod_name": pod, "password": password}
	if err := c.del(ctx, "/pod/delete", payload, token, nil); err != nil {
		return mapError(err, ErrPod)
	}
	return nil
}

// PodExists reports whether the user owns a pod with this name.
func (c *Client) PodExists(ctx context.Context, username, pod string) (bool, error) {
	token, err := c.token(username)
	if err != nil {
		return false, err
	}
	query := httpx.Query{}.Set("pod_name", pod)
	var out presenceResponse
	if err := c.get(ctx, "/pod/present", query, token, &out); err != nil {
		return false, mapError(err, ErrPod)
	}
	return out.Present, nil
}

// ListPods lists the user's pods and the pods shared with it.
func (c *Client) ListPods(ctx context.Context, username string) (*PodList, error) {
	token, err := c.token(username)
	if err != nil {
		return nil, err
	}
	var out PodList
	if err := c.get(ctx, "/pod/ls", nil, token, &out); err != nil {
		return nil, mapError(err, ErrPod)
	}
	return &out, nil
}

// StatPod fetches info about an open pod.
func (c *Client) StatPod(ctx context.Context, username, pod string) (*PodInfo, error) {
	token, err := c.token(username)
	if err != nil {
		return nil, err
	}
	query := httpx.Query{}.Set("pod_name", pod)
	var out PodInfo
	if err := c.get(ctx, "/pod/stat", query, token, &out); err != nil {
		return nil, mapError(err, ErrPod)
	}
	return &out, nil
}

// ReceiveSharedPod adds a pod shared by another user to this account.
func (c *Client) ReceiveSharedPod(ctx context.Context, username, sharingRef string) error {
	token, err := c.token(username)
	if err != nil {
		return err
	}
	query := httpx.Query{}.Set("sharing_ref", sharingRef)
	if err := c.get(ctx, "/pod/receive", query, token, nil); err != nil {
		return mapError(err, ErrPod)
	}
	return nil
}

// SharedPodDetails inspects a sharing reference without receiving the pod.
func (c *Client) SharedPodDetails(ctx context.Context, username, sharingRef string) (*SharedPodInfo, error) {
	token, err := c.token(username)
	if err != nil {
		return nil, err
	}
	query := httpx.Query{}.Set("sharing_ref", sharingRef)
	var out SharedPodInfo
	if err := c.get(ctx, "/pod/receiveinfo", query, token, &out); err != nil {
		return nil, mapError(err, ErrPod)
	}
	return &out, nil
}
