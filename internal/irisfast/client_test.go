package irisfast

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	json "github.com/goccy/go-json"
)

type replyRecorder struct {
	mu      sync.Mutex
	replies []ReplyRequest
	headers []http.Header
	fails   int32
	hits    int32

	configFails int32
	configHits  int32
}

func (r *replyRecorder) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		switch req.URL.Path {
		case "/config":
			atomic.AddInt32(&r.configHits, 1)
			if atomic.AddInt32(&r.configFails, -1) >= 0 {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			_, _ = w.Write([]byte(`{"bot_http_port":3000,"db_polling_rate":100,"message_send_rate":50,"web_server_endpoint":"http://bot"}`))
		case "/reply":
			atomic.AddInt32(&r.hits, 1)
			if atomic.AddInt32(&r.fails, -1) >= 0 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			body, _ := io.ReadAll(req.Body)
			var rr ReplyRequest
			if err := json.Unmarshal(body, &rr); err != nil {
				t.Errorf("decode reply: %v", err)
			}
			r.mu.Lock()
			r.replies = append(r.replies, rr)
			r.headers = append(r.headers, req.Header.Clone())
			r.mu.Unlock()
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}
}

func TestSendMessage(t *testing.T) {
	rec := &replyRecorder{}
	srv := httptest.NewServer(rec.handler(t))
	defer srv.Close()

	c := NewClient(srv.URL, WithHeaderProvider(func() map[string]string {
		return map[string]string{"X-User-Id": "bot", "X-Empty": " "}
	}))
	if err := c.SendMessage(context.Background(), "room-1", "hello"); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if len(rec.replies) != 1 {
		t.Fatalf("expected one reply, got %d", len(rec.replies))
	}
	got := rec.replies[0]
	if got.Type != "text" || got.Room != "room-1" || got.Data != "hello" {
		t.Fatalf("unexpected reply: %+v", got)
	}
	if rec.headers[0].Get("X-User-Id") != "bot" || rec.headers[0].Get("X-Empty") != "" {
		t.Fatalf("unexpected headers: %v", rec.headers[0])
	}
}

func TestSendMessageIsNotRetried(t *testing.T) {
	rec := &replyRecorder{fails: 1}
	srv := httptest.NewServer(rec.handler(t))
	defer srv.Close()

	c := NewClient(srv.URL, WithRetry(3))
	if err := c.SendMessage(context.Background(), "room-1", "hello"); err == nil {
		t.Fatalf("expected the 503 to surface")
	}
	if n := atomic.LoadInt32(&rec.hits); n != 1 {
		t.Fatalf("expected a single /reply attempt, got %d", n)
	}
	if len(rec.replies) != 0 {
		t.Fatalf("expected no delivered reply, got %d", len(rec.replies))
	}
}

func TestGetConfigRetriesUnavailable(t *testing.T) {
	rec := &replyRecorder{configFails: 2}
	srv := httptest.NewServer(rec.handler(t))
	defer srv.Close()

	cfg, err := NewClient(srv.URL, WithRetry(3)).GetConfig(context.Background())
	if err != nil {
		t.Fatalf("GetConfig after retries: %v", err)
	}
	if cfg.Port != 3000 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if n := atomic.LoadInt32(&rec.configHits); n != 3 {
		t.Fatalf("expected 3 /config attempts, got %d", n)
	}
}

func TestGetConfig(t *testing.T) {
	rec := &replyRecorder{}
	srv := httptest.NewServer(rec.handler(t))
	defer srv.Close()

	cfg, err := NewClient(srv.URL, WithTimeout(2*time.Second)).GetConfig(context.Background())
	if err != nil {
		t.Fatalf("GetConfig: %v", err)
	}
	if cfg.Port != 3000 || cfg.WebserverEndpoint != "http://bot" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestAutoEgressFallsBackToHTTP(t *testing.T) {
	rec := &replyRecorder{}
	srv := httptest.NewServer(rec.handler(t))
	defer srv.Close()

	ws := NewWebSocket("ws://127.0.0.1:1/ws", 0, time.Millisecond)
	eg := NewEgress("auto", false, NewClient(srv.URL), ws, nil)
	if err := eg.SendText(context.Background(), "room-1", "via http"); err != nil {
		t.Fatalf("SendText: %v", err)
	}
	if len(rec.replies) != 1 || rec.replies[0].Data != "via http" {
		t.Fatalf("expected http delivery, got %+v", rec.replies)
	}
}

func TestWSEgressNotConnected(t *testing.T) {
	ws := NewWebSocket("ws://127.0.0.1:1/ws", 0, time.Millisecond)
	eg := NewEgress("ws", false, nil, ws, nil)
	if err := eg.SendText(context.Background(), "room-1", "x"); err != errWSNotConnected {
		t.Fatalf("expected errWSNotConnected, got %v", err)
	}
}

func TestDryrunEgress(t *testing.T) {
	eg := NewEgress("http", true, nil, nil, nil)
	if err := eg.SendText(context.Background(), "room-1", "x"); err != nil {
		t.Fatalf("dryrun should not fail: %v", err)
	}
}
