package replication

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Sink is the external data-replication collaborator. It is eventually
// consistent and best-effort: callers invoke it only after their local
// transaction has committed and treat every error as log-only.
type Sink interface {
	Upsert(table string, row interface{}, conflictKey string) error
	Delete(table string, key string, value interface{}) error
}

type upsertPayload struct {
	RequestID   string      `json:"request_id"`
	Table       string      `json:"table"`
	ConflictKey string      `json:"conflict_key"`
	Row         interface{} `json:"row"`
}

type deletePayload struct {
	RequestID string      `json:"request_id"`
	Table     string      `json:"table"`
	Key       string      `json:"key"`
	Value     interface{} `json:"value"`
}

// HTTPSink pushes row changes to a remote replication endpoint as JSON.
type HTTPSink struct {
	BaseURL string
	Client  *http.Client
}

func NewHTTPSink(baseURL string) *HTTPSink {
	return &HTTPSink{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *HTTPSink) Upsert(table string, row interface{}, conflictKey string) error {
	payload := upsertPayload{
		RequestID:   uuid.New().String(),
		Table:       table,
		ConflictKey: conflictKey,
		Row:         row,
	}
	return s.post("/upsert", payload)
}

func (s *HTTPSink) Delete(table string, key string, value interface{}) error {
	payload := deletePayload{
		RequestID: uuid.New().String(),
		Table:     table,
		Key:       key,
		Value:     value,
	}
	return s.post("/delete", payload)
}

func (s *HTTPSink) post(path string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal replication payload: %w", err)
	}
	resp, err := s.Client.Post(s.BaseURL+path, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("replication request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("replication endpoint %s returned status %d", path, resp.StatusCode)
	}
	return nil
}

// NoopSink discards all replication traffic. Used when no endpoint is
// configured and in tests.
type NoopSink struct{}

func (NoopSink) Upsert(table string, row interface{}, conflictKey string) error { return nil }
func (NoopSink) Delete(table string, key string, value interface{}) error       { return nil }
