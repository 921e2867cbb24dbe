package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mjlog/mjconv/pkg/converter"
	"github.com/mjlog/mjconv/pkg/logger"
	"github.com/mjlog/mjconv/pkg/output"
)

func newTestReport() *output.Report {
	result := &converter.Result{
		RunID:     "run-42",
		StartedAt: time.Now(),
		Duration:  time.Second,
		Processed: 1,
		Failed:    1,
		Files: []converter.FileResult{
			{Path: "in/game1.json", Output: "out/game1.json", Status: converter.StatusSuccess, Events: 20},
			{Path: "in/game2.json", Status: converter.StatusFailed, Error: "failed to parse log from file in/game2.json"},
		},
	}
	return output.NewReport(result, "in", "out", "mjconv.yaml")
}

func TestClient_Send_Success(t *testing.T) {
	var receivedBody []byte
	var receivedContentType string
	var receivedAuth string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedContentType = r.Header.Get("Content-Type")
		receivedAuth = r.Header.Get("Authorization")
		receivedBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	defer server.Close()

	client := NewClient()
	report := newTestReport()

	resp := client.Send(context.Background(), report, SendOptions{
		URL: server.URL,
	})

	if !resp.Success() {
		t.Errorf("expected success, got error: %v", resp.Error)
	}

	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected status 200, got %d", resp.StatusCode)
	}

	if resp.Body != `{"status":"ok"}` {
		t.Errorf("unexpected body: %s", resp.Body)
	}

	if receivedContentType != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", receivedContentType)
	}

	if receivedAuth != "" {
		t.Errorf("expected no auth header, got %s", receivedAuth)
	}

	// Verify payload is valid JSON containing expected fields
	var payload map[string]interface{}
	if err := json.Unmarshal(receivedBody, &payload); err != nil {
		t.Errorf("failed to parse received payload: %v", err)
	}

	if _, ok := payload["summary"]; !ok {
		t.Error("payload missing summary field")
	}
	if meta, ok := payload["metadata"].(map[string]interface{}); !ok || meta["run_id"] != "run-42" {
		t.Errorf("payload metadata = %v, want run_id run-42", payload["metadata"])
	}
}

func TestClient_Send_WithBearerToken(t *testing.T) {
	var receivedAuth string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient()
	report := newTestReport()

	resp := client.Send(context.Background(), report, SendOptions{
		URL:   server.URL,
		Token: "secret-token-123",
	})

	if !resp.Success() {
		t.Errorf("expected success, got error: %v", resp.Error)
	}

	if receivedAuth != "Bearer secret-token-123" {
		t.Errorf("expected Bearer token, got %s", receivedAuth)
	}
}

func TestClient_Send_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal error"}`))
	}))
	defer server.Close()

	client := NewClient()
	report := newTestReport()

	resp := client.Send(context.Background(), report, SendOptions{
		URL: server.URL,
	})

	if resp.Success() {
		t.Error("expected failure, got success")
	}

	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", resp.StatusCode)
	}

	if resp.Error == nil {
		t.Error("expected error to be set")
	}
}

func TestClient_Send_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient()
	report := newTestReport()

	resp := client.Send(context.Background(), report, SendOptions{
		URL:     server.URL,
		Timeout: 50 * time.Millisecond,
	})

	if resp.Success() {
		t.Error("expected failure due to timeout")
	}

	if resp.Error == nil {
		t.Error("expected error to be set")
	}
}

func TestClient_Send_InvalidURL(t *testing.T) {
	client := NewClient()
	report := newTestReport()

	resp := client.Send(context.Background(), report, SendOptions{
		URL: "://invalid-url",
	})

	if resp.Success() {
		t.Error("expected failure for invalid URL")
	}

	if resp.Error == nil {
		t.Error("expected error to be set")
	}
}

func TestClient_Send_ConnectionRefused(t *testing.T) {
	client := NewClient()
	report := newTestReport()

	resp := client.Send(context.Background(), report, SendOptions{
		URL:     "http://127.0.0.1:59999", // Unlikely to be listening
		Timeout: 100 * time.Millisecond,
	})

	if resp.Success() {
		t.Error("expected failure for connection refused")
	}

	if resp.Error == nil {
		t.Error("expected error to be set")
	}
}

func TestClient_Send_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	client := NewClient(WithRetryWait(time.Millisecond, 5*time.Millisecond))
	resp := client.Send(context.Background(), newTestReport(), SendOptions{
		URL:     server.URL,
		Retries: 2,
	})

	if !resp.Success() {
		t.Fatalf("expected success after retries, got error: %v", resp.Error)
	}
	if resp.StatusCode != http.StatusAccepted {
		t.Errorf("expected status 202, got %d", resp.StatusCode)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("server saw %d requests, want 3", got)
	}
	if resp.Attempts != 3 {
		t.Errorf("Attempts = %d, want 3", resp.Attempts)
	}
}

func TestClient_Send_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	client := NewClient(WithRetryWait(time.Millisecond, 5*time.Millisecond))
	resp := client.Send(context.Background(), newTestReport(), SendOptions{
		URL:     server.URL,
		Retries: 3,
	})

	if resp.Success() {
		t.Error("expected failure for 400")
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("server saw %d requests, want 1", got)
	}
}

func TestResponse_Success(t *testing.T) {
	tests := []struct {
		name        string
		resp        Response
		wantSuccess bool
	}{
		{"200 OK", Response{StatusCode: 200}, true},
		{"201 Created", Response{StatusCode: 201}, true},
		{"204 No Content", Response{StatusCode: 204}, true},
		{"400 Bad Request", Response{StatusCode: 400}, false},
		{"500 Server Error", Response{StatusCode: 500}, false},
		{"With Error", Response{StatusCode: 200, Error: io.EOF}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.resp.Success(); got != tt.wantSuccess {
				t.Errorf("Success() = %v, want %v", got, tt.wantSuccess)
			}
		})
	}
}

func TestClient_Send_LogsToContextLogger(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	var buf bytes.Buffer
	cfg := logger.DefaultConfig()
	cfg.Level = logger.DebugLevel
	cfg.Output = &buf
	ctx := logger.ContextWithLogger(context.Background(), logger.New(cfg))

	resp := NewClient().Send(ctx, newTestReport(), SendOptions{URL: server.URL})
	if resp.Success() {
		t.Fatal("expected failure for status 400")
	}

	out := buf.String()
	for _, want := range []string{"sending webhook", "webhook delivery failed", "status 400"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}
