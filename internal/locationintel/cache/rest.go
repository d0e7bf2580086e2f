package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"
)

// maxResponseBytes bounds how much of a REST reply is read.
const maxResponseBytes = 4 << 20

// RESTStore talks to a Redis-compatible REST endpoint that accepts a JSON
// command array (["GET", key]) authenticated with a bearer token and replies
// with {"result": ...} or {"error": "..."}.
type RESTStore struct {
	baseURL string
	token   string
	client  *http.Client
}

type restReply struct {
	Result json.RawMessage `json:"result"`
	Error  string          `json:"error"`
}

// NewRESTStore creates a store for baseURL. client must not be nil.
func NewRESTStore(baseURL, token string, client *http.Client) *RESTStore {
	return &RESTStore{baseURL: baseURL, token: token, client: client}
}

// Get issues GET key. A null result or any failure is a miss.
func (s *RESTStore) Get(ctx context.Context, key string) ([]byte, bool) {
	reply, ok := s.do(ctx, "GET", key)
	if !ok {
		return nil, false
	}

	var value *string
	if err := json.Unmarshal(reply.Result, &value); err != nil || value == nil {
		return nil, false
	}
	return []byte(*value), true
}

// Set issues SET key value PX ttl. Failures are ignored.
func (s *RESTStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	_, _ = s.do(ctx, "SET", key, string(value), "PX", strconv.FormatInt(ttl.Milliseconds(), 10))
}

func (s *RESTStore) do(ctx context.Context, command ...string) (restReply, bool) {
	body, err := json.Marshal(command)
	if err != nil {
		return restReply{}, false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL, bytes.NewReader(body))
	if err != nil {
		return restReply{}, false
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return restReply{}, false
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return restReply{}, false
	}

	var reply restReply
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&reply); err != nil {
		return restReply{}, false
	}
	if reply.Error != "" {
		return restReply{}, false
	}
	return reply, true
}
