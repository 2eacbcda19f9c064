package server

import (
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"prompt-party/internal/config"
)

func newTestServer(t *testing.T, handler http.Handler) *httptest.Server {
	t.Helper()
	listener, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Skipf("skipping test; listen unavailable: %v", err)
	}
	ts := &httptest.Server{
		Listener: listener,
		Config:   &http.Server{Handler: handler},
	}
	ts.Start()
	return ts
}

// testConfig shrinks the prompt wait window so long-poll tests finish quickly.
func testConfig() config.Config {
	cfg := config.Default()
	cfg.PromptWaitSeconds = 1
	cfg.PromptPollMillis = 20
	return cfg
}
