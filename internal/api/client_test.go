package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/careerflow/careerflow-cli/internal/apperr"
	"github.com/careerflow/careerflow-cli/internal/transport"
)

func newTestClient(t *testing.T, baseURL string, opts ...Option) *Client {
	t.Helper()
	hc, err := transport.NewClient(transport.ClientOptions{Timeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return New(baseURL, hc, opts...)
}

func TestAskAI(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ask-ai" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		var in struct {
			Query string `json:"query"`
		}
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if in.Query != "tips" {
			t.Errorf("query = %q, want %q", in.Query, "tips")
		}
		_, _ = w.Write([]byte(`{"answer":"Practice daily.","citations":[{"title":"Guide","link":"https://example.com"}]}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	ans, err := c.AskAI(context.Background(), "tips")
	if err != nil {
		t.Fatalf("AskAI: %v", err)
	}
	if ans.Answer != "Practice daily." {
		t.Errorf("answer = %q", ans.Answer)
	}
	if len(ans.Citations) != 1 || ans.Citations[0].Link != "https://example.com" {
		t.Errorf("citations = %+v", ans.Citations)
	}
}

func TestAskAICachesByNormalizedQuery(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		_, _ = w.Write([]byte(`{"answer":"cached"}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, WithCacheTTL(time.Minute))
	for _, q := range []string{"How to prepare?", "how to prepare?", "  How to prepare?  "} {
		if _, err := c.AskAI(context.Background(), q); err != nil {
			t.Fatalf("AskAI(%q): %v", q, err)
		}
	}
	if hits != 1 {
		t.Errorf("backend hits = %d, want 1", hits)
	}
}

func TestInterviewDataErrorPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error":"Not found"}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	_, err := c.InterviewData(context.Background(), "Obscure Corp")
	var be *apperr.BackendError
	if !errors.As(err, &be) {
		t.Fatalf("err = %v, want BackendError", err)
	}
	if be.Message != "Not found" {
		t.Errorf("message = %q", be.Message)
	}
}

func TestInterviewDataErrorPayloadNotCached(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if hits == 1 {
			_, _ = w.Write([]byte(`{"error":"Not found"}`))
			return
		}
		_, _ = w.Write([]byte(`{"company_brief":"brief","rounds":[],"questions":[]}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, WithCacheTTL(time.Minute))
	if _, err := c.InterviewData(context.Background(), "X"); err == nil {
		t.Fatal("expected error on first fetch")
	}
	data, err := c.InterviewData(context.Background(), "X")
	if err != nil {
		t.Fatalf("second fetch: %v", err)
	}
	if data.CompanyBrief != "brief" {
		t.Errorf("brief = %q", data.CompanyBrief)
	}
	if hits != 2 {
		t.Errorf("hits = %d, want 2 (error payloads are never cached)", hits)
	}
}

func TestInterviewDataServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	_, err := c.InterviewData(context.Background(), "Google")
	var ne *apperr.NetworkError
	if !errors.As(err, &ne) {
		t.Fatalf("err = %v, want NetworkError", err)
	}
}

func TestMoreQuestionsSendsExisting(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			Name     string   `json:"name"`
			Existing []string `json:"existing"`
		}
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if in.Name != "Google" || len(in.Existing) != 2 {
			t.Errorf("request = %+v", in)
		}
		_, _ = w.Write([]byte(`{"questions":[{"question":"Q3","answer":"A3"}]}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	more, err := c.MoreQuestions(context.Background(), "Google", []string{"Q1", "Q2"})
	if err != nil {
		t.Fatalf("MoreQuestions: %v", err)
	}
	if len(more) != 1 || more[0].Question != "Q3" {
		t.Errorf("more = %+v", more)
	}
}

func TestMockTestParsesMixedAnswerTypes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"quiz":[
			{"question":"Q0","options":["a","b"],"correct_answer":1},
			{"question":"Q1","options":["a","b"],"correct_answer":"0"}
		]}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	quiz, err := c.MockTest(context.Background(), "Google")
	if err != nil {
		t.Fatalf("MockTest: %v", err)
	}
	if len(quiz) != 2 {
		t.Fatalf("len(quiz) = %d", len(quiz))
	}
	if !quiz[0].CorrectAnswer.Matches(1) {
		t.Error("numeric correct_answer should match option 1")
	}
	if !quiz[1].CorrectAnswer.Matches(0) {
		t.Error("string correct_answer should match option 0")
	}
}

func TestScoreResumeUploadsMultipart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		f, hdr, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		defer f.Close()
		if hdr.Filename != "resume.pdf" {
			t.Errorf("filename = %q", hdr.Filename)
		}
		_, _ = w.Write([]byte(`{"score":88,"ats_score":90,"grade":"A","summary":"Great."}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	audit, err := c.ScoreResume(context.Background(), "resume.pdf", strings.NewReader("%PDF-1.4 fake"))
	if err != nil {
		t.Fatalf("ScoreResume: %v", err)
	}
	if audit.Score != 88 || audit.Grade != "A" {
		t.Errorf("audit = %+v", audit)
	}
}
