package fairos

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/fairos-dfs/sdk-go/internal/dfsapi"
	"github.com/fairos-dfs/sdk-go/internal/httpx"
	"github.com/fairos-dfs/sdk-go/internal/multipartx"
)

// FieldType is the index type of a document database field.
type FieldType int

const (
	StringField FieldType = iota
	NumberField
	MapField
)

func (t FieldType) String() string {
	switch t {
	case StringField:
		return "string"
	case NumberField:
		return "number"
	case MapField:
		return "map"
	default:
		return "unknown"
	}
}

// Field declares one indexed field of a document database.
type Field struct {
	Name string
	Type FieldType
}

// DocDatabase describes one document database and its indexed fields.
type DocDatabase struct {
	Name   string
	Fields []Field
}

type docIndex struct {
	Name string `json:"name"`
	Type int    `json:"type"`
}

type docTable struct {
	Name    string     `json:"table_name"`
	Indexes []docIndex `json:"indexes"`
}

type docListResponse struct {
	Tables []docTable `json:"Tables"`
}

type docGetResponse struct {
	Doc string `json:"doc"`
}

type docFindResponse struct {
	Docs []string `json:"docs"`
}

// Index type codes used on the wire.
const (
	wireStringIndex = 2
	wireNumberIndex = 3
	wireMapIndex    = 4
)

func fieldTypeFromWire(code int) FieldType {
	switch code {
	case wireNumberIndex:
		return NumberField
	case wireMapIndex:
		return MapField
	default:
		return StringField
	}
}

// CreateDocDatabase creates a document database with the given indexed
// fields. The "id" field is always indexed and need not be declared.
func (c *Client) CreateDocDatabase(ctx context.Context, username, pod, database string, fields []Field, mutable bool) error {
	token, err := c.token(username)
	if err != nil {
		return err
	}
	si := make([]string, 0, len(fields))
	for _, f := range fields {
		si = append(si, f.Name+"="+f.Type.String())
	}
	payload := map[string]any{
		"pod_name":   pod,
		"table_name": database,
		"si":         strings.Join(si, ","),
		"mutable":    mutable,
	}
	if _, err := c.post(ctx, "/doc/new", payload, token, nil); err != nil {
		return mapError(err, ErrDocument)
	}
	return nil
}

// OpenDocDatabase opens an existing document database.
func (c *Client) OpenDocDatabase(ctx context.Context, username, pod, database string) error {
	token, err := c.token(username)
	if err != nil {
		return err
	}
	payload := map[string]string{"pod_name": pod, "table_name": database}
	if _, err := c.post(ctx, "/doc/open", payload, token, nil); err != nil {
		return mapError(err, ErrDocument)
	}
	return nil
}

// DeleteDocDatabase removes the database and all its documents.
func (c *Client) DeleteDocDatabase(ctx context.Context, username, pod, database string) error {
	token, err := c.token(username)
	if err != nil {
		return err
	}
	payload := map[string]string{"pod_name": pod, "table_name": database}
	if err := c.del(ctx, "/doc/delete", payload, token, nil); err != nil {
		return mapError(err, ErrDocument)
	}
	return nil
}

// ListDocDatabases lists the pod's document databases sorted by name, each
// with its indexed fields.
func (c *Client) ListDocDatabases(ctx context.Context, username, pod string) ([]DocDatabase, error) {
	token, err := c.token(username)
	if err != nil {
		return nil, err
	}
	query := httpx.Query{}.Set("pod_name", pod)
	var out docListResponse
	if err := c.get(ctx, "/doc/ls", query, token, &out); err != nil {
		return nil, mapError(err, ErrDocument)
	}
	databases := make([]DocDatabase, 0, len(out.Tables))
	for _, t := range out.Tables {
		db := DocDatabase{Name: t.Name}
		for _, idx := range t.Indexes {
			db.Fields = append(db.Fields, Field{Name: idx.Name, Type: fieldTypeFromWire(idx.Type)})
		}
		sort.Slice(db.Fields, func(i, j int) bool { return db.Fields[i].Name < db.Fields[j].Name })
		databases = append(databases, db)
	}
	sort.Slice(databases, func(i, j int) bool { return databases[i].Name < databases[j].Name })
	return databases, nil
}

// PutDocument inserts doc into the database and returns its id. The document
// is serialized as JSON; when it carries no "id" field a random UUID is
// assigned.
func (c *Client) PutDocument(ctx context.Context, username, pod, database string, doc any) (string, error) {
	token, err := c.token(username)
	if err != nil {
		return "", err
	}
	raw, err := jsonMarshal(doc)
	if err != nil {
		return "", errors.Wrap(err, "fairos: encode document")
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return "", errors.Wrap(err, "fairos: document must be a JSON object")
	}
	id, ok := fields["id"].(string)
	if !ok || id == "" {
		id = uuid.NewString()
		fields["id"] = id
		if raw, err = jsonMarshal(fields); err != nil {
			return "", errors.Wrap(err, "fairos: encode document")
		}
	}
	payload := map[string]string{
		"pod_name":   pod,
		"table_name": database,
		"doc":        string(raw),
	}
	if _, err := c.post(ctx, "/doc/entry/put", payload, token, nil); err != nil {
		return "", mapError(err, ErrDocument)
	}
	return id, nil
}

// GetDocument fetches the document with the given id and decodes it into T.
func GetDocument[T any](ctx context.Context, c *Client, username, pod, database, id string) (T, error) {
	var zero T
	token, err := c.token(username)
	if err != nil {
		return zero, err
	}
	query := httpx.Query{}.
		Set("pod_name", pod).
		Set("table_name", database).
		Set("id", id)
	var out docGetResponse
	if err := c.get(ctx, "/doc/entry/get", query, token, &out); err != nil {
		return zero, mapError(err, ErrDocument)
	}
	var doc T
	if err := dfsapi.DecodeBase64JSON(out.Doc, &doc); err != nil {
		return zero, errors.Wrapf(err, "fairos: decode document %q", id)
	}
	return doc, nil
}

// FindDocuments evaluates expr against the database and decodes every match
// into T. A zero limit returns all matches.
func FindDocuments[T any](ctx context.Context, c *Client, username, pod, database string, expr Expr, limit uint64) ([]T, error) {
	token, err := c.token(username)
	if err != nil {
		return nil, err
	}
	compiled, err := expr.Compile()
	if err != nil {
		return nil, err
	}
	query := httpx.Query{}.
		Set("pod_name", pod).
		Set("table_name", database).
		Set("expr", compiled)
	if limit != 0 {
		query = query.Set("limit", strconv.FormatUint(limit, 10))
	}
	var out docFindResponse
	if err := c.get(ctx, "/doc/find", query, token, &out); err != nil {
		return nil, mapError(err, ErrDocument)
	}
	docs := make([]T, 0, len(out.Docs))
	for _, encoded := range out.Docs {
		var doc T
		if err := dfsapi.DecodeBase64JSON(encoded, &doc); err != nil {
			return nil, errors.Wrap(err, "fairos: decode document")
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// DeleteDocument removes the document with the given id.
func (c *Client) DeleteDocument(ctx context.Context, username, pod, database, id string) error {
	token, err := c.token(username)
	if err != nil {
		return err
	}
	payload := map[string]string{
		"pod_name":   pod,
		"table_name": database,
		"id":         id,
	}
	if err := c.del(ctx, "/doc/entry/del", payload, token, nil); err != nil {
		return mapError(err, ErrDocument)
	}
	return nil
}

// CountDocuments returns how many documents match expr. The server reports
// the count as the text of its message envelope.
func (c *Client) CountDocuments(ctx context.Context, username, pod, database string, expr Expr) (uint64, error) {
	token, err := c.token(username)
	if err != nil {
		return 0, err
	}
	compiled, err := expr.Compile()
	if err != nil {
		return 0, err
	}
	payload := map[string]string{
		"pod_name":   pod,
		"table_name": database,
	}
	if compiled != "" {
		payload["expr"] = compiled
	}
	body, err := jsonMarshal(payload)
	if err != nil {
		return 0, errors.Wrap(err, "fairos: encode request body")
	}
	res, err := c.api.Do(ctx, &httpx.Request{
		Method: http.MethodPost,
		Path:   "/doc/count",
		Body:   body,
		Token:  token,
	})
	if err != nil {
		return 0, mapError(err, ErrDocument)
	}
	msg, err := dfsapi.ParseMessage(res.Body)
	if err != nil {
		return 0, mapError(err, ErrDocument)
	}
	count, err := strconv.ParseUint(strings.TrimSpace(msg.Message), 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "fairos: parse document count %q", msg.Message)
	}
	return count, nil
}

// LoadJSONBuffer bulk-loads newline-delimited JSON documents into the
// database.
func (c *Client) LoadJSONBuffer(ctx context.Context, username, pod, database string, data []byte, fileName string, compression Compression) error {
	token, err := c.token(username)
	if err != nil {
		return err
	}
	b := &multipartx.Builder{}
	b.AddField("pod_name", pod)
	b.AddField("table_name", database)
	b.AddReader("json", bytes.NewReader(data), fileName, "application/json")
	boundary, body, err := b.Build()
	if err != nil {
		return errors.Wrap(err, "fairos: build json body")
	}
	_, err = c.api.DoMultipart(ctx, &httpx.MultipartRequest{
		Path:        "/doc/loadjson",
		Boundary:    boundary,
		Body:        body,
		Token:       token,
		Compression: string(compression),
	})
	if err != nil {
		return mapError(err, ErrDocument)
	}
	return nil
}

// LoadJSONFile bulk-loads a local newline-delimited JSON file into the
// database.
func (c *Client) LoadJSONFile(ctx context.Context, username, pod, database, localPath string, compression Compression) error {
	token, err := c.token(username)
	if err != nil {
		return err
	}
	b := &multipartx.Builder{}
	b.AddField("pod_name", pod)
	b.AddField("table_name", database)
	b.AddFile("json", localPath)
	boundary, body, err := b.Build()
	if err != nil {
		return errors.Wrap(err, "fairos: build json body")
	}
	_, err = c.api.DoMultipart(ctx, &httpx.MultipartRequest{
		Path:        "/doc/loadjson",
		Boundary:    boundary,
		Body:        body,
		Token:       token,
		Compression: string(compression),
	})
	if err != nil {
		return mapError(err, ErrDocument)
	}
	return nil
}

// IndexJSON indexes a JSON file already uploaded into the pod's file system.
func (c *Client) IndexJSON(ctx context.Context, username, pod, database, podFilePath string) error {
	token, err := c.token(username)
	if err != nil {
		return err
	}
	payload := map[string]string{
		"pod_name":   pod,
		"table_name": database,
		"file_name":  podFilePath,
	}
	if _, err := c.post(ctx, "/doc/indexjson", payload, token, nil); err != nil {
		return mapError(err, ErrDocument)
	}
	return nil
}
