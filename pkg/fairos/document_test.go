package fairos

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type person struct {
	ID        string  `json:"id,omitempty"`
	FirstName string  `json:"first_name"`
	Age       float64 `json:"age"`
}

func encodeDoc(t *testing.T, doc any) string {
	t.Helper()
	raw, err := json.Marshal(doc)
	require.NoError(t, err)
	return base64.StdEncoding.EncodeToString(raw)
}

func TestCreateDocDatabase(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/doc/new", r.URL.Path)

		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "people", payload["table_name"])
		assert.Equal(t, "first_name=string,age=number", payload["si"])
		assert.Equal(t, true, payload["mutable"])
		w.Write([]byte(`{"message": "created", "code": 201}`))
	})
	loggedIn(c, "alice")

	fields := []Field{
		{Name: "first_name", Type: StringField},
		{Name: "age", Type: NumberField},
	}
	require.NoError(t, c.CreateDocDatabase(context.Background(), "alice", "demo", "people", fields, true))
}

func TestListDocDatabasesSorted(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/doc/ls", r.URL.Path)
		w.Write([]byte(`{"Tables": [
			{"table_name": "zebra", "indexes": [{"name": "id", "type": 2}]},
			{"table_name": "people", "indexes": [
				{"name": "first_name", "type": 2},
				{"name": "age", "type": 3},
				{"name": "address", "type": 4}
			]}
		]}`))
	})
	loggedIn(c, "alice")

	dbs, err := c.ListDocDatabases(context.Background(), "alice", "demo")
	require.NoError(t, err)
	require.Len(t, dbs, 2)
	assert.Equal(t, "people", dbs[0].Name)
	assert.Equal(t, "zebra", dbs[1].Name)
	assert.Equal(t, []Field{
		{Name: "address", Type: MapField},
		{Name: "age", Type: NumberField},
		{Name: "first_name", Type: StringField},
	}, dbs[0].Fields, "fields come back sorted by name regardless of wire order")
}

func TestPutDocumentAssignsID(t *testing.T) {
	var sentDoc map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/doc/entry/put", r.URL.Path)

		var payload map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		require.NoError(t, json.Unmarshal([]byte(payload["doc"]), &sentDoc))
		w.Write([]byte(`{"message": "added", "code": 200}`))
	})
	loggedIn(c, "alice")

	id, err := c.PutDocument(context.Background(), "alice", "demo", "people", person{FirstName: "alice", Age: 30})
	require.NoError(t, err)

	_, parseErr := uuid.Parse(id)
	assert.NoError(t, parseErr, "assigned id must be a UUID")
	assert.Equal(t, id, sentDoc["id"])
	assert.Equal(t, "alice", sentDoc["first_name"])
}

func TestPutDocumentKeepsExplicitID(t *testing.T) {
	var sentDoc map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		require.NoError(t, json.Unmarshal([]byte(payload["doc"]), &sentDoc))
		w.Write([]byte(`{"message": "added", "code": 200}`))
	})
	loggedIn(c, "alice")

	id, err := c.PutDocument(context.Background(), "alice", "demo", "people", person{ID: "custom-1", FirstName: "bob", Age: 40})
	require.NoError(t, err)
	assert.Equal(t, "custom-1", id)
	assert.Equal(t, "custom-1", sentDoc["id"])
}

func TestGetDocument(t *testing.T) {
	stored := person{ID: "custom-1", FirstName: "alice", Age: 30}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/doc/entry/get", r.URL.Path)
		assert.Equal(t, "pod_name=demo&table_name=people&id=custom-1", r.URL.RawQuery)
		json.NewEncoder(w).Encode(map[string]string{"doc": encodeDoc(t, stored)})
	})
	loggedIn(c, "alice")

	got, err := GetDocument[person](context.Background(), c, "alice", "demo", "people", "custom-1")
	require.NoError(t, err)
	assert.Equal(t, stored, got)
}

func TestFindDocuments(t *testing.T) {
	matches := []person{
		{ID: "1", FirstName: "alice", Age: 30},
		{ID: "2", FirstName: "carol", Age: 45},
	}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/doc/find", r.URL.Path)
		assert.Equal(t, "pod_name=demo&table_name=people&expr=age%3e9&limit=10", r.URL.RawQuery)
		json.NewEncoder(w).Encode(map[string][]string{
			"docs": {encodeDoc(t, matches[0]), encodeDoc(t, matches[1])},
		})
	})
	loggedIn(c, "alice")

	got, err := FindDocuments[person](context.Background(), c, "alice", "demo", "people", Gt("age", Number(9)), 10)
	require.NoError(t, err)
	assert.Equal(t, matches, got)
}

func TestFindDocumentsStringEquality(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "pod_name=demo&table_name=people&expr=first_name=%22alice%22", r.URL.RawQuery)
		json.NewEncoder(w).Encode(map[string][]string{"docs": {}})
	})
	loggedIn(c, "alice")

	got, err := FindDocuments[person](context.Background(), c, "alice", "demo", "people", Eq("first_name", Str("alice")), 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFindDocumentsUnsupportedExpr(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("unsupported expressions must not reach the server")
	})
	loggedIn(c, "alice")

	expr := And(Eq("a", Number(1)), Eq("b", Number(2)))
	_, err := FindDocuments[person](context.Background(), c, "alice", "demo", "people", expr, 0)
	assert.ErrorIs(t, err, ErrUnsupportedExpression)
}

func TestDeleteDocument(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		require.Equal(t, "/doc/entry/del", r.URL.Path)
		w.Write([]byte(`{"message": "deleted", "code": 200}`))
	})
	loggedIn(c, "alice")

	require.NoError(t, c.DeleteDocument(context.Background(), "alice", "demo", "people", "custom-1"))
}

func TestCountDocuments(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/doc/count", r.URL.Path)

		var payload map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "age%3e9", payload["expr"])
		w.Write([]byte(`{"message": "2", "code": 200}`))
	})
	loggedIn(c, "alice")

	count, err := c.CountDocuments(context.Background(), "alice", "demo", "people", Gt("age", Number(9)))
	require.NoError(t, err)
	assert.Equal(t, uint64(2), count)
}

func TestCountDocumentsAll(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		_, hasExpr := payload["expr"]
		assert.False(t, hasExpr, "All must send no expression")
		w.Write([]byte(`{"message": "7", "code": 200}`))
	})
	loggedIn(c, "alice")

	count, err := c.CountDocuments(context.Background(), "alice", "demo", "people", All())
	require.NoError(t, err)
	assert.Equal(t, uint64(7), count)
}

func TestLoadJSONBuffer(t *testing.T) {
	rows := []byte(`{"id": "1"}` + "\n" + `{"id": "2"}` + "\n")
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/doc/loadjson", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "people", r.FormValue("table_name"))

		_, header, err := r.FormFile("json")
		require.NoError(t, err)
		assert.Equal(t, "rows.json", header.Filename)
		w.Write([]byte(`{"message": "loaded", "code": 200}`))
	})
	loggedIn(c, "alice")

	err := c.LoadJSONBuffer(context.Background(), "alice", "demo", "people", rows, "rows.json", NoCompression)
	require.NoError(t, err)
}

func TestIndexJSON(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/doc/indexjson", r.URL.Path)

		var payload map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "/data/rows.json", payload["file_name"])
		w.Write([]byte(`{"message": "indexed", "code": 200}`))
	})
	loggedIn(c, "alice")

	require.NoError(t, c.IndexJSON(context.Background(), "alice", "demo", "people", "/data/rows.json"))
}
