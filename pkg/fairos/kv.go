package fairos

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"sort"
	"strconv"

	"github.com/pkg/errors"

	"github.com/fairos-dfs/sdk-go/internal/httpx"
	"github.com/fairos-dfs/sdk-go/internal/multipartx"
)

// IndexType selects how a key-value store indexes its keys.
type IndexType string

const (
	StringIndex IndexType = "string"
	NumberIndex IndexType = "number"
)

type kvTable struct {
	Name    string   `json:"table_name"`
	Indexes []string `json:"indexes"`
}

type kvListResponse struct {
	Tables []kvTable `json:"Tables"`
}

type kvEntryResponse struct {
	Keys   []string `json:"keys"`
	Values string   `json:"values"`
}

type kvCountResponse struct {
	Count     uint64 `json:"count"`
	TableName string `json:"table_name"`
}

// CreateKVStore creates a key-value store inside the pod.
func (c *Client) CreateKVStore(ctx context.Context, username, pod, store string, indexType IndexType) error {
	token, err := c.token(username)
	if err != nil {
		return err
	}
	payload := map[string]string{
		"pod_name":   pod,
		"table_name": store,
		"indexType":  string(indexType),
	}
	if _, err := c.post(ctx, "/kv/new", payload, token, nil); err != nil {
		return mapError(err, ErrKeyValue)
	}
	return nil
}

// OpenKVStore opens an existing key-value store.
func (c *Client) OpenKVStore(ctx context.Context, username, pod, store string) error {
	token, err := c.token(username)
	if err != nil {
		return err
	}
	payload := map[string]string{"pod_name": pod, "table_name": store}
	if _, err := c.post(ctx, "/kv/open", payload, token, nil); err != nil {
		return mapError(err, ErrKeyValue)
	}
	return nil
}

// DeleteKVStore removes the store and all its pairs.
func (c *Client) DeleteKVStore(ctx context.Context, username, pod, store string) error {
	token, err := c.token(username)
	if err != nil {
		return err
	}
	payload := map[string]string{"pod_name": pod, "table_name": store}
	if err := c.del(ctx, "/kv/delete", payload, token, nil); err != nil {
		return mapError(err, ErrKeyValue)
	}
	return nil
}

// ListKVStores lists the store names in the pod, sorted.
func (c *Client) ListKVStores(ctx context.Context, username, pod string) ([]string, error) {
	token, err := c.token(username)
	if err != nil {
		return nil, err
	}
	query := httpx.Query{}.Set("pod_name", pod)
	var out kvListResponse
	if err := c.get(ctx, "/kv/ls", query, token, &out); err != nil {
		return nil, mapError(err, ErrKeyValue)
	}
	names := make([]string, 0, len(out.Tables))
	for _, t := range out.Tables {
		names = append(names, t.Name)
	}
	sort.Strings(names)
	return names, nil
}

// PutKVPair stores value under key. The value is serialized as JSON.
func (c *Client) PutKVPair(ctx context.Context, username, pod, store, key string, value any) error {
	token, err := c.token(username)
	if err != nil {
		return err
	}
	data, err := jsonMarshal(value)
	if err != nil {
		return errors.Wrap(err, "fairos: encode value")
	}
	payload := map[string]string{
		"pod_name":   pod,
		"table_name": store,
		"key":        key,
		"value":      string(data),
	}
	if _, err := c.post(ctx, "/kv/entry/put", payload, token, nil); err != nil {
		return mapError(err, ErrKeyValue)
	}
	return nil
}

// GetKVPair fetches the value stored under key and decodes it into T.
func GetKVPair[T any](ctx context.Context, c *Client, username, pod, store, key string) (T, error) {
	var zero T
	raw, err := c.getKVRaw(ctx, username, pod, store, key)
	if err != nil {
		return zero, err
	}
	var value T
	if err := json.Unmarshal(raw, &value); err != nil {
		return zero, errors.Wrapf(err, "fairos: decode value for key %q", key)
	}
	return value, nil
}

func (c *Client) getKVRaw(ctx context.Context, username, pod, store, key string) ([]byte, error) {
	token, err := c.token(username)
	if err != nil {
		return nil, err
	}
	query := httpx.Query{}.
		Set("pod_name", pod).
		Set("table_name", store).
		Set("key", key).
		Set("format", "byte-string")
	var out kvEntryResponse
	if err := c.get(ctx, "/kv/entry/get", query, token, &out); err != nil {
		return nil, mapError(err, ErrKeyValue)
	}
	return base64.StdEncoding.DecodeString(out.Values)
}

// DeleteKVPair removes the pair stored under key.
func (c *Client) DeleteKVPair(ctx context.Context, username, pod, store, key string) error {
	token, err := c.token(username)
	if err != nil {
		return err
	}
	payload := map[string]string{
		"pod_name":   pod,
		"table_name": store,
		"key":        key,
	}
	if err := c.del(ctx, "/kv/entry/del", payload, token, nil); err != nil {
		return mapError(err, ErrKeyValue)
	}
	return nil
}

// CountKVPairs returns the number of pairs in the store.
func (c *Client) CountKVPairs(ctx context.Context, username, pod, store string) (uint64, error) {
	token, err := c.token(username)
	if err != nil {
		return 0, err
	}
	payload := map[string]string{"pod_name": pod, "table_name": store}
	var out kvCountResponse
	if _, err := c.post(ctx, "/kv/count", payload, token, &out); err != nil {
		return 0, mapError(err, ErrKeyValue)
	}
	return out.Count, nil
}

// KVPairExists reports whether the store holds a pair under key.
func (c *Client) KVPairExists(ctx context.Context, username, pod, store, key string) (bool, error) {
	token, err := c.token(username)
	if err != nil {
		return false, err
	}
	query := httpx.Query{}.
		Set("pod_name", pod).
		Set("table_name", store).
		Set("key", key)
	var out presenceResponse
	if err := c.get(ctx, "/kv/present", query, token, &out); err != nil {
		return false, mapError(err, ErrKeyValue)
	}
	return out.Present, nil
}

// LoadCSVBuffer bulk-loads CSV rows into the store. The first CSV column
// becomes the key and the whole row the value. With memory set the server
// builds the index in memory before flushing.
func (c *Client) LoadCSVBuffer(ctx context.Context, username, pod, store string, data []byte, fileName string, memory bool) error {
	token, err := c.token(username)
	if err != nil {
		return err
	}
	b := &multipartx.Builder{}
	b.AddField("pod_name", pod)
	b.AddField("table_name", store)
	if memory {
		b.AddField("memory", store)
	}
	b.AddReader("csv", bytes.NewReader(data), fileName, "text/csv")
	boundary, body, err := b.Build()
	if err != nil {
		return errors.Wrap(err, "fairos: build csv body")
	}
	_, err = c.api.DoMultipart(ctx, &httpx.MultipartRequest{
		Path:     "/kv/loadcsv",
		Boundary: boundary,
		Body:     body,
		Token:    token,
	})
	if err != nil {
		return mapError(err, ErrKeyValue)
	}
	return nil
}

// LoadCSVFile bulk-loads a local CSV file into the store.
func (c *Client) LoadCSVFile(ctx context.Context, username, pod, store, localPath string, memory bool) error {
	token, err := c.token(username)
	if err != nil {
		return err
	}
	b := &multipartx.Builder{}
	b.AddField("pod_name", pod)
	b.AddField("table_name", store)
	if memory {
		b.AddField("memory", store)
	}
	b.AddFile("csv", localPath)
	boundary, body, err := b.Build()
	if err != nil {
		return errors.Wrap(err, "fairos: build csv body")
	}
	_, err = c.api.DoMultipart(ctx, &httpx.MultipartRequest{
		Path:     "/kv/loadcsv",
		Boundary: boundary,
		Body:     body,
		Token:    token,
	})
	if err != nil {
		return mapError(err, ErrKeyValue)
	}
	return nil
}

// KVSeek positions a cursor at startPrefix and returns it. The cursor walks
// keys in order up to endPrefix, or at most limit pairs when limit is
// non-zero.
func (c *Client) KVSeek(ctx context.Context, username, pod, store, startPrefix, endPrefix string, limit uint32) (*SeekCursor, error) {
	token, err := c.token(username)
	if err != nil {
		return nil, err
	}
	payload := map[string]string{
		"pod_name":     pod,
		"table_name":   store,
		"start_prefix": startPrefix,
	}
	if endPrefix != "" {
		payload["end_prefix"] = endPrefix
	}
	if limit != 0 {
		payload["limit"] = strconv.FormatUint(uint64(limit), 10)
	}
	if _, err := c.post(ctx, "/kv/seek", payload, token, nil); err != nil {
		return nil, mapError(err, ErrKeyValue)
	}
	return &SeekCursor{
		client: c,
		pod:    pod,
		store:  store,
		token:  token,
		limit:  limit,
	}, nil
}
