package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
)

func connectPlayer(t *testing.T, ts *httptest.Server, telegramID int64, name string) {
	t.Helper()
	resp := doRequest(t, ts, http.MethodPost, "/api/connect", map[string]any{
		"telegram_id": telegramID,
		"username":    name,
	})
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected status %d, got %d", http.StatusNoContent, resp.StatusCode)
	}
}

func fetchPrompt(t *testing.T, ts *httptest.Server, telegramID int64) string {
	t.Helper()
	resp := doRequest(t, ts, http.MethodGet, "/api/prompt?telegram_id="+strconv.FormatInt(telegramID, 10), nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	body := decodeBody(t, resp)
	prompt, ok := body["prompt"].(string)
	if !ok || prompt == "" {
		t.Fatalf("expected non-empty prompt, got %#v", body["prompt"])
	}
	return prompt
}

func sendAnswer(t *testing.T, ts *httptest.Server, telegramID int64, answer string) {
	t.Helper()
	resp := doRequest(t, ts, http.MethodPost, "/api/answer", map[string]any{
		"telegram_id": telegramID,
		"answer":      answer,
	})
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected status %d, got %d", http.StatusNoContent, resp.StatusCode)
	}
}

func sendVote(t *testing.T, ts *httptest.Server, voterID, candidateID int64) *http.Response {
	t.Helper()
	return doRequest(t, ts, http.MethodPost, "/api/vote", map[string]any{
		"voter_id":     voterID,
		"candidate_id": candidateID,
	})
}

func doRequest(t *testing.T, ts *httptest.Server, method, path string, payload any) *http.Response {
	t.Helper()
	var body *bytes.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, ts.URL+path, body)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	t.Cleanup(func() {
		_ = resp.Body.Close()
	})
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return body
}
