package server

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestHandleHealth(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	HandleHealth(context.Background()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected %d got %d", http.StatusOK, rec.Code)
	}

	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("unexpected body %q", rec.Body.String())
	}
}

func TestServeHTTP(t *testing.T) {
	t.Parallel()

	srv, err := New("0")
	if err != nil {
		t.Fatal(err)
	}

	if _, port, err := net.SplitHostPort(srv.Addr()); err != nil || port != srv.Port() {
		t.Errorf("addr %q: port %q, err %v, want port %q", srv.Addr(), port, err, srv.Port())
	}

	ctx, cancel := context.WithCancel(context.Background())
	mux := http.NewServeMux()
	mux.Handle("/health", HandleHealth(ctx))

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ServeHTTP(ctx, &http.Server{Handler: mux})
	}()

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get("http://127.0.0.1:" + srv.Port() + "/health")
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected %d got %d: %s", http.StatusOK, resp.StatusCode, body)
	}

	cancel()
	if err := <-errCh; err != nil {
		t.Errorf("serve: %v", err)
	}
}
