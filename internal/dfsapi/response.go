// Package dfsapi holds decoding helpers for the dfs server's response
// shapes shared across endpoints.
package dfsapi

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// Message is the generic {message, code} envelope returned by endpoints that
// carry no entity payload, and by every non-2xx response.
type Message struct {
	Message string `json:"message"`
	Code    uint32 `json:"code"`
}

// ParseMessage decodes a message envelope from a response body.
func ParseMessage(body []byte) (*Message, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return &Message{}, nil
	}
	var msg Message
	if err := json.Unmarshal(trimmed, &msg); err != nil {
		return nil, fmt.Errorf("dfsapi: decode message envelope: %w", err)
	}
	return &msg, nil
}

// DecodeBase64JSON decodes a base64-encoded JSON payload into out. The kv
// entry and document endpoints return their stored values this way.
func DecodeBase64JSON(encoded string, out any) error {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return fmt.Errorf("dfsapi: decode base64 payload: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("dfsapi: decode payload: %w", err)
	}
	return nil
}
