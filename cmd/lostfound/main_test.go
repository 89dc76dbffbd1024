package main

import (
	"net"
	"net/http"
	"os"
	"sync/atomic"
	"syscall"
	"testing"
	"time"
)

// orderedWaiter records whether Wait ran after the in-flight request ended.
type orderedWaiter struct {
	requestDone *atomic.Bool
	afterDrain  atomic.Bool
	called      atomic.Bool
}

func (w *orderedWaiter) Wait() {
	w.called.Store(true)
	w.afterDrain.Store(w.requestDone.Load())
}

func TestServeDrainsBeforeWaiting(t *testing.T) {
	var requestDone atomic.Bool
	started := make(chan struct{})
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		time.Sleep(200 * time.Millisecond)
		requestDone.Store(true)
		w.WriteHeader(http.StatusNoContent)
	})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	server := &http.Server{Handler: handler}
	bg := &orderedWaiter{requestDone: &requestDone}
	quit := make(chan os.Signal, 1)

	served := make(chan error, 1)
	go func() { served <- serve(server, ln, bg, quit, 5*time.Second) }()

	status := make(chan int, 1)
	go func() {
		resp, err := http.Get("http://" + ln.Addr().String() + "/")
		if err != nil {
			status <- 0
			return
		}
		resp.Body.Close()
		status <- resp.StatusCode
	}()

	<-started
	quit <- syscall.SIGTERM

	select {
	case err := <-served:
		if err != nil {
			t.Fatalf("serve: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return")
	}

	if !bg.called.Load() {
		t.Fatal("background work was not waited for")
	}
	if !bg.afterDrain.Load() {
		t.Error("background work was waited for before the request drained")
	}
	if got := <-status; got != http.StatusNoContent {
		t.Errorf("in-flight request: expected 204, got %d", got)
	}
}

func TestLoadConfigPrecedence(t *testing.T) {
	t.Setenv("LOSTFOUND_ADDR", ":9000")
	t.Setenv("LOSTFOUND_BACKEND_URL", "http://env.example/api")

	cfg, err := loadConfig([]string{"-env", "", "-b", "https://flag.example/api"})
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Addr != ":9000" {
		t.Errorf("expected env addr, got %q", cfg.Addr)
	}
	if cfg.Backend.URL != "https://flag.example/api" {
		t.Errorf("expected flag backend, got %q", cfg.Backend.URL)
	}
	if cfg.DBPath != "lostfound.sqlite3" {
		t.Errorf("expected default db path, got %q", cfg.DBPath)
	}
}
