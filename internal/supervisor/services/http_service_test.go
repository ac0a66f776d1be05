// TuneIsland - Song Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tuneisland

package services

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/tuneisland/internal/api"
)

var _ suture.Service = (*HTTPServerService)(nil)

// stubAPIServer accepts the listener, then blocks until Shutdown.
type stubAPIServer struct {
	serveErr    error
	shutdownErr error

	serving chan struct{}
	stop    chan struct{}
	once    sync.Once
}

func newStubAPIServer() *stubAPIServer {
	return &stubAPIServer{serving: make(chan struct{}), stop: make(chan struct{})}
}

func (s *stubAPIServer) Serve(ln net.Listener) error {
	defer ln.Close()
	close(s.serving)
	if s.serveErr != nil {
		return s.serveErr
	}
	<-s.stop
	return http.ErrServerClosed
}

func (s *stubAPIServer) Shutdown(context.Context) error {
	s.once.Do(func() { close(s.stop) })
	return s.shutdownErr
}

func newAPIServer() *http.Server {
	handler := api.NewHandler(nil, api.Stores{}, nil, nil)
	return &http.Server{
		Handler:           api.NewRouter(handler, nil).SetupChi(),
		ReadHeaderTimeout: time.Second,
	}
}

func waitForAddr(t *testing.T, svc *HTTPServerService) string {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if addr := svc.Addr(); addr != "" {
			return addr
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("service never bound its listener")
	return ""
}

func TestHTTPServerService_ServesAPIRouter(t *testing.T) {
	t.Parallel()

	svc := NewHTTPServerService(newAPIServer(), "127.0.0.1:0", time.Second, zerolog.Nop())
	if svc.Addr() != "" {
		t.Errorf("Addr() before Serve = %q, want empty", svc.Addr())
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	addr := waitForAddr(t, svc)
	client := &http.Client{Timeout: 2 * time.Second, Transport: &http.Transport{DisableKeepAlives: true}}

	resp, err := client.Get("http://" + addr + "/api/v1/health/live")
	if err != nil {
		cancel()
		t.Fatalf("GET health/live error = %v", err)
	}
	var body struct {
		Status string `json:"status"`
	}
	decodeErr := json.NewDecoder(resp.Body).Decode(&body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || decodeErr != nil || body.Status != "success" {
		t.Errorf("health/live = %d %+v (decode error %v)", resp.StatusCode, body, decodeErr)
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve() did not return after cancellation")
	}

	if _, err := client.Get("http://" + addr + "/api/v1/health/live"); err == nil {
		t.Error("API still answering after shutdown")
	}
}

func TestHTTPServerService_AddressInUse(t *testing.T) {
	t.Parallel()

	taken, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("net.Listen() error = %v", err)
	}
	defer taken.Close()

	server := newStubAPIServer()
	svc := NewHTTPServerService(server, taken.Addr().String(), time.Second, zerolog.Nop())

	err = svc.Serve(context.Background())
	if err == nil || !strings.Contains(err.Error(), "listen on") {
		t.Errorf("Serve() = %v, want listen error", err)
	}
	select {
	case <-server.serving:
		t.Error("server started without a listener")
	default:
	}
}

func TestHTTPServerService_Failures(t *testing.T) {
	t.Parallel()

	serveErr := errors.New("accept: too many open files")
	shutdownErr := errors.New("in-flight requests did not finish")

	tests := []struct {
		name        string
		serveErr    error
		shutdownErr error
		cancel      bool
		want        error
	}{
		{"serve failure", serveErr, nil, false, serveErr},
		{"shutdown failure", nil, shutdownErr, true, shutdownErr},
		{"clean shutdown", nil, nil, true, context.Canceled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server := newStubAPIServer()
			server.serveErr = tt.serveErr
			server.shutdownErr = tt.shutdownErr
			svc := NewHTTPServerService(server, "127.0.0.1:0", time.Second, zerolog.Nop())

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			done := make(chan error, 1)
			go func() { done <- svc.Serve(ctx) }()

			<-server.serving
			if tt.cancel {
				cancel()
			}

			select {
			case err := <-done:
				if !errors.Is(err, tt.want) {
					t.Errorf("Serve() = %v, want %v", err, tt.want)
				}
			case <-time.After(2 * time.Second):
				t.Fatal("Serve() did not return")
			}
		})
	}
}

func TestNewHTTPServerService_DefaultShutdownTimeout(t *testing.T) {
	t.Parallel()

	for _, timeout := range []time.Duration{0, -time.Second} {
		svc := NewHTTPServerService(newStubAPIServer(), ":0", timeout, zerolog.Nop())
		if svc.shutdownTimeout != 10*time.Second {
			t.Errorf("shutdownTimeout(%v) = %v, want 10s", timeout, svc.shutdownTimeout)
		}
	}
	if got := NewHTTPServerService(newStubAPIServer(), ":0", time.Second, zerolog.Nop()).String(); got != "http-server" {
		t.Errorf("String() = %q", got)
	}
}

func TestHTTPServerService_StopsWithSupervisor(t *testing.T) {
	t.Parallel()

	svc := NewHTTPServerService(newAPIServer(), "127.0.0.1:0", time.Second, zerolog.Nop())

	sup := suture.New("api-layer", suture.Spec{
		FailureThreshold: 3,
		FailureBackoff:   10 * time.Millisecond,
		Timeout:          2 * time.Second,
	})
	sup.Add(svc)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := sup.ServeBackground(ctx)

	addr := waitForAddr(t, svc)
	cancel()
	<-errCh

	conn, err := net.DialTimeout("tcp", addr, 200*time.Millisecond)
	if err == nil {
		conn.Close()
		t.Error("listener still open after supervisor stopped")
	}
}
