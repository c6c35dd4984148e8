package fairos

import (
	"context"
	"encoding/base64"
	"strings"

	"github.com/fairos-dfs/sdk-go/internal/httpx"
)

// seekExhausted is the server's message when the cursor has walked past the
// end of its range.
const seekExhausted = "no next element"

// SeekCursor walks the pairs of a key-value store in key order. Use it like
// bufio.Scanner: call Next until it returns false, then check Err to tell
// end-of-range from a genuine failure.
//
//	cur, err := client.KVSeek(ctx, user, pod, store, "a", "", 0)
//	for cur.Next(ctx) {
//		use(cur.Key(), cur.Value())
//	}
//	if err := cur.Err(); err != nil { ... }
//
// A cursor is tied to the server-side seek state of its store and must not
// be shared between goroutines.
type SeekCursor struct {
	client *Client
	pod    string
	store  string
	token  string
	limit  uint32

	key   string
	value []byte
	err   error
	done  bool
}

// Next advances the cursor. It returns false when the range is exhausted or
// a fetch fails; Err distinguishes the two.
func (s *SeekCursor) Next(ctx context.Context) bool {
	if s.done || s.err != nil {
		return false
	}
	query := httpx.Query{}.
		Set("pod_name", s.pod).
		Set("table_name", s.store)
	var out kvEntryResponse
	err := s.client.get(ctx, "/kv/seek/next", query, s.token, &out)
	if err != nil {
		if remote, ok := httpx.AsRemote(err); ok && strings.Contains(remote.Message, seekExhausted) {
			s.done = true
			return false
		}
		s.err = mapError(err, ErrKeyValue)
		return false
	}
	if len(out.Keys) == 0 {
		s.done = true
		return false
	}
	s.key = out.Keys[0]
	s.value, err = base64.StdEncoding.DecodeString(out.Values)
	if err != nil {
		s.err = mapError(err, ErrKeyValue)
		return false
	}
	return true
}

// Key returns the key of the current pair.
func (s *SeekCursor) Key() string { return s.key }

// Value returns the raw value bytes of the current pair.
func (s *SeekCursor) Value() []byte { return s.value }

// Err returns the first failure hit by Next. It is nil after the cursor
// simply ran out of pairs.
func (s *SeekCursor) Err() error { return s.err }

// SizeHint returns the upper bound on remaining pairs when the cursor was
// opened with a limit. The second return is false for unbounded cursors.
func (s *SeekCursor) SizeHint() (int, bool) {
	if s.limit == 0 {
		return 0, false
	}
	return int(s.limit), true
}
