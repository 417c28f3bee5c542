package publish

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/i474232898/weather-500-years/internal/weather"
)

var creds = TwitterCredentials{
	APIKey:            "key",
	APISecret:         "secret",
	AccessToken:       "token",
	AccessTokenSecret: "token-secret",
}

func TestStdoutPublisher(t *testing.T) {
	var buf bytes.Buffer
	p := NewStdoutPublisher(&buf)

	res, err := p.Publish(context.Background(), "오늘 서울 기온은 25.0℃")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Posted || res.PostID != "" {
		t.Errorf("dry run must not report a post: %+v", res)
	}
	if !strings.Contains(buf.String(), "오늘 서울 기온은 25.0℃") {
		t.Errorf("text not written to output: %q", buf.String())
	}
}

func newTwitterServer(t *testing.T, calls *int32, status int, body string) *TwitterPublisher {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		if r.Method != http.MethodPost || r.URL.Path != "/2/tweets" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if !strings.HasPrefix(r.Header.Get("Authorization"), "OAuth ") {
			t.Errorf("request not OAuth1 signed: %q", r.Header.Get("Authorization"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)

	p, err := NewTwitterPublisher(creds, &http.Client{Timeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("NewTwitterPublisher: %v", err)
	}
	p.client.Host = srv.URL
	return p
}

func TestTwitterPublisherPosts(t *testing.T) {
	var calls int32
	p := newTwitterServer(t, &calls, http.StatusCreated, `{"data":{"id":"1809","text":"hello"}}`)

	res, err := p.Publish(context.Background(), "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Posted || res.PostID != "1809" {
		t.Errorf("unexpected result: %+v", res)
	}
	if res.URL != "https://x.com/i/web/status/1809" {
		t.Errorf("URL = %q", res.URL)
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestTwitterPublisherRejections(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"unauthorized", http.StatusUnauthorized, `{"title":"Unauthorized","type":"about:blank","status":401,"detail":"Unauthorized"}`},
		{"rate limited", http.StatusTooManyRequests, `{"title":"Too Many Requests","type":"about:blank","status":429,"detail":"Too Many Requests"}`},
		{"forbidden", http.StatusForbidden, `{"title":"Forbidden","type":"about:blank","status":403,"detail":"duplicate content"}`},
		{"non json", http.StatusBadGateway, `bad gateway`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			p := newTwitterServer(t, &calls, tt.status, tt.body)

			_, err := p.Publish(context.Background(), "hello")
			if !errors.Is(err, weather.ErrPublish) {
				t.Fatalf("expected ErrPublish, got %v", err)
			}
			if atomic.LoadInt32(&calls) != 1 {
				t.Errorf("calls = %d, want exactly one attempt", calls)
			}
		})
	}
}

func TestNewTwitterPublisherMissingCredentials(t *testing.T) {
	_, err := NewTwitterPublisher(TwitterCredentials{APIKey: "only"}, nil)
	if !errors.Is(err, weather.ErrPublish) {
		t.Fatalf("expected ErrPublish, got %v", err)
	}
}
