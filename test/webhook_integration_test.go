package test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/mjlog/mjconv/internal/cli"
)

// TestIntegration_WebhookSite tests webhook delivery against webhook.site.
// This test is skipped by default. Set WEBHOOK_INTEGRATION_TEST=1 to run.
func TestIntegration_WebhookSite(t *testing.T) {
	if os.Getenv("WEBHOOK_INTEGRATION_TEST") != "1" {
		t.Skip("Skipping webhook.site integration test. Set WEBHOOK_INTEGRATION_TEST=1 to run")
	}

	chdir(t)
	site := resty.New().SetBaseURL("https://webhook.site").SetTimeout(30 * time.Second)

	// Step 1: Create a new webhook.site token
	t.Log("Creating webhook.site token...")
	token, err := createWebhookSiteToken(site)
	if err != nil {
		t.Fatalf("Failed to create webhook.site token: %v", err)
	}
	t.Logf("Created webhook URL: https://webhook.site/%s", token.UUID)

	defer func() {
		if err := deleteWebhookSiteToken(site, token.UUID); err != nil {
			t.Logf("Warning: failed to delete token: %v", err)
		}
	}()

	// Step 2: Convert the mixed fixture directory, which has one broken file
	webhookURL := fmt.Sprintf("https://webhook.site/%s", token.UUID)
	inputDir := filepath.Join("testdata", "logs", "mixed")
	outputDir := t.TempDir()

	t.Log("Running mjconv...")
	var stdout, stderr bytes.Buffer
	code := cli.Run([]string{
		"--webhook-url", webhookURL,
		"--webhook-trigger", "always",
		inputDir, outputDir,
	}, &stdout, &stderr)
	t.Logf("mjconv exit %d\nstdout:\n%s\nstderr:\n%s", code, stdout.String(), stderr.String())

	// Step 3: Wait a moment for webhook to be received
	t.Log("Waiting for webhook delivery...")
	time.Sleep(2 * time.Second)

	// Step 4: Check webhook.site for received requests
	requests, err := getWebhookSiteRequests(site, token.UUID)
	if err != nil {
		t.Fatalf("Failed to get webhook requests: %v", err)
	}

	if len(requests.Data) == 0 {
		t.Fatal("No webhook requests received at webhook.site")
	}

	req := requests.Data[0]
	contentType := req.GetHeader("content-type")

	if req.Method != "POST" {
		t.Errorf("Expected POST method, got %s", req.Method)
	}

	if !strings.Contains(contentType, "application/json") {
		t.Errorf("Expected application/json content-type, got %s", contentType)
	}

	var payload map[string]interface{}
	if err := json.Unmarshal([]byte(req.Content), &payload); err != nil {
		t.Fatalf("Failed to parse webhook payload: %v", err)
	}

	t.Logf("Webhook payload: %s", req.Content)

	if _, ok := payload["metadata"]; !ok {
		t.Error("Payload missing 'metadata' field")
	}

	summary, ok := payload["summary"].(map[string]interface{})
	if !ok {
		t.Fatal("Payload missing 'summary' field")
	}
	if failed, _ := summary["failed"].(float64); failed != 1 {
		t.Errorf("Expected 1 failed file in summary, got %v", summary["failed"])
	}
}

// webhook.site API types
type webhookSiteToken struct {
	UUID string `json:"uuid"`
}

type webhookSiteRequests struct {
	Data []webhookSiteRequest `json:"data"`
}

type webhookSiteRequest struct {
	UUID      string          `json:"uuid"`
	Method    string          `json:"method"`
	Content   string          `json:"content"`
	Headers   json.RawMessage `json:"headers"`
	CreatedAt string          `json:"created_at"`
}

func (r *webhookSiteRequest) GetHeader(name string) string {
	var headers map[string]interface{}
	if err := json.Unmarshal(r.Headers, &headers); err != nil {
		return ""
	}
	if val, ok := headers[name]; ok {
		switch v := val.(type) {
		case string:
			return v
		case []interface{}:
			if len(v) > 0 {
				if s, ok := v[0].(string); ok {
					return s
				}
			}
		}
	}
	return ""
}

func createWebhookSiteToken(site *resty.Client) (*webhookSiteToken, error) {
	var token webhookSiteToken
	resp, err := site.R().
		SetHeader("Content-Type", "application/json").
		SetResult(&token).
		Post("/token")
	if err != nil {
		return nil, fmt.Errorf("POST /token failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode(), resp.String())
	}
	return &token, nil
}

func getWebhookSiteRequests(site *resty.Client, uuid string) (*webhookSiteRequests, error) {
	var requests webhookSiteRequests
	resp, err := site.R().
		SetResult(&requests).
		SetPathParam("uuid", uuid).
		Get("/token/{uuid}/requests")
	if err != nil {
		return nil, fmt.Errorf("GET requests failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode(), resp.String())
	}
	return &requests, nil
}

func deleteWebhookSiteToken(site *resty.Client, uuid string) error {
	_, err := site.R().
		SetPathParam("uuid", uuid).
		Delete("/token/{uuid}")
	return err
}
