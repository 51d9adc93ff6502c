package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

func TestDoSendsBodyAndHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %q", ct)
		}
		if got := r.Header.Get("X-Custom"); got != "yes" {
			t.Errorf("custom header = %q", got)
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("created"))
	}))
	defer srv.Close()

	c, err := NewClient(ClientOptions{Timeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	resp, err := c.Do(context.Background(), &Request{
		Method:      http.MethodPost,
		URL:         srv.URL,
		Body:        `{"k":"v"}`,
		ContentType: "application/json",
		Headers:     map[string]string{"X-Custom": "yes"},
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Errorf("status = %d", resp.StatusCode)
	}
	if resp.BodyString() != "created" {
		t.Errorf("body = %q", resp.BodyString())
	}
	if !resp.OK() {
		t.Error("201 should be OK")
	}
}

func TestDoDefaultsToGET(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("method = %s", r.Method)
		}
	}))
	defer srv.Close()

	c, _ := NewClient(ClientOptions{})
	if _, err := c.Do(context.Background(), &Request{URL: srv.URL}); err != nil {
		t.Fatalf("Do: %v", err)
	}
}

func TestResponseOK(t *testing.T) {
	for status, want := range map[int]bool{200: true, 204: true, 301: false, 404: false, 502: false} {
		resp := &Response{StatusCode: status}
		if resp.OK() != want {
			t.Errorf("OK() for %d = %v, want %v", status, resp.OK(), want)
		}
	}
}

func TestStatsAccumulate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	c, _ := NewClient(ClientOptions{})
	for i := 0; i < 3; i++ {
		if _, err := c.Do(context.Background(), &Request{URL: srv.URL}); err != nil {
			t.Fatalf("Do: %v", err)
		}
	}

	stats := c.Stats()
	if stats.TotalRequests != 3 {
		t.Errorf("TotalRequests = %d", stats.TotalRequests)
	}
	if stats.AvgDuration <= 0 {
		t.Errorf("AvgDuration = %v", stats.AvgDuration)
	}
}

func TestSetRateLimitDuringRequests(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	c, _ := NewClient(ClientOptions{})

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 5; j++ {
				if _, err := c.Do(context.Background(), &Request{URL: srv.URL}); err != nil {
					t.Errorf("Do: %v", err)
					return
				}
			}
		}()
	}
	for i := 0; i < 20; i++ {
		c.SetRateLimit(10000)
		c.SetRateLimit(0)
	}
	wg.Wait()

	if got := c.Stats().TotalRequests; got != 20 {
		t.Errorf("TotalRequests = %d, want 20", got)
	}
}

func TestRateLimiterRespectsContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	c, _ := NewClient(ClientOptions{MaxRPS: 0.001})
	// First request consumes the single burst token.
	if _, err := c.Do(context.Background(), &Request{URL: srv.URL}); err != nil {
		t.Fatalf("Do: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := c.Do(ctx, &Request{URL: srv.URL}); err == nil {
		t.Error("expected rate limiter to abort on context deadline")
	}
}

func TestRequestClone(t *testing.T) {
	orig := &Request{
		Method:  http.MethodPost,
		URL:     "http://example.com",
		Headers: map[string]string{"A": "1"},
	}
	clone := orig.Clone()
	clone.Headers["A"] = "2"
	if orig.Headers["A"] != "1" {
		t.Error("clone must not share the headers map")
	}

	var nilReq *Request
	if nilReq.Clone() != nil {
		t.Error("cloning nil should return nil")
	}
}

func TestCancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(time.Second)
	}))
	defer srv.Close()

	c, _ := NewClient(ClientOptions{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.Do(ctx, &Request{URL: srv.URL}); err == nil {
		t.Error("expected error for cancelled context")
	}
}
