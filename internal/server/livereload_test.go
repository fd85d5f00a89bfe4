package server

import (
	"bufio"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestReloadHub_Broadcast(t *testing.T) {
	hub := newReloadHub()
	a, b := hub.subscribe(), hub.subscribe()

	hub.broadcast()
	hub.broadcast() // coalesces with the pending notification

	for i, ch := range []chan struct{}{a, b} {
		select {
		case <-ch:
		default:
			t.Errorf("client %d not notified", i)
		}
		select {
		case <-ch:
			t.Errorf("client %d notified twice", i)
		default:
		}
	}

	hub.unsubscribe(a)
	if hub.count() != 1 {
		t.Errorf("count() = %d, want 1", hub.count())
	}
}

func TestReloadHub_Stream(t *testing.T) {
	hub := newReloadHub()
	ts := httptest.NewServer(withCORS(hub, nil))
	defer ts.Close()

	resp, err := http.Get(ts.URL)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	assertCORS(t, resp.Header)

	r := bufio.NewReader(resp.Body)
	readEvent := func() string {
		t.Helper()
		line, err := r.ReadString('\n')
		if err != nil {
			t.Fatalf("read event: %v", err)
		}
		if _, err := r.ReadString('\n'); err != nil {
			t.Fatalf("read separator: %v", err)
		}
		return strings.TrimSpace(line)
	}

	if got := readEvent(); got != "data: connected" {
		t.Fatalf("first event = %q", got)
	}
	hub.broadcast()
	if got := readEvent(); got != "data: reload" {
		t.Fatalf("second event = %q", got)
	}

	hub.close()
	deadline := time.Now().Add(5 * time.Second)
	for hub.count() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("stream did not end after close")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestReloadHub_RejectsPost(t *testing.T) {
	rec := httptest.NewRecorder()
	withCORS(newReloadHub(), nil).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, LiveReloadPath, nil))
	if rec.Code != http.StatusNotImplemented {
		t.Errorf("status = %d, want 501", rec.Code)
	}
	assertCORS(t, rec.Header())
}
