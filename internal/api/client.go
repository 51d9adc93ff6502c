package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/careerflow/careerflow-cli/internal/apperr"
	"github.com/careerflow/careerflow-cli/internal/transport"
)

// Backend is the surface the view-state controller depends on.
type Backend interface {
	AskAI(ctx context.Context, query string) (*Answer, error)
	InterviewData(ctx context.Context, name string) (*InterviewData, error)
	MoreQuestions(ctx context.Context, name string, existing []string) ([]Question, error)
	MockTest(ctx context.Context, name string) ([]MockQuestion, error)
	ScoreResume(ctx context.Context, filename string, file io.Reader) (*ResumeAudit, error)
}

// Client talks to the prep backend over HTTP.
type Client struct {
	baseURL string
	http    transport.Client
	logger  *slog.Logger

	// cache holds successful ask-ai and get-interview-data payloads. Mock
	// tests and resume scores are generated fresh every time and are never
	// cached.
	cache *gocache.Cache
}

var _ Backend = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithCacheTTL enables response caching with the given TTL.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *Client) {
		c.cache = gocache.New(ttl, 2*ttl)
	}
}

// WithLogger sets the client logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a backend client for the given base URL.
func New(baseURL string, hc transport.Client, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    hc,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AskAI sends a free-form query to the AI assistant.
func (c *Client) AskAI(ctx context.Context, query string) (*Answer, error) {
	key := "ask:" + strings.ToLower(strings.TrimSpace(query))
	if c.cache != nil {
		if v, ok := c.cache.Get(key); ok {
			return v.(*Answer), nil
		}
	}

	var out Answer
	if err := c.postJSON(ctx, "/ask-ai", map[string]string{"query": query}, &out); err != nil {
		return nil, err
	}

	if c.cache != nil {
		c.cache.Set(key, &out, gocache.DefaultExpiration)
	}
	return &out, nil
}

// InterviewData fetches the full interview payload for a company. A payload
// carrying an explicit error field is returned as a BackendError.
func (c *Client) InterviewData(ctx context.Context, name string) (*InterviewData, error) {
	key := "company:" + strings.ToLower(strings.TrimSpace(name))
	if c.cache != nil {
		if v, ok := c.cache.Get(key); ok {
			return v.(*InterviewData), nil
		}
	}

	var out InterviewData
	if err := c.postJSON(ctx, "/get-interview-data", map[string]string{"name": name}, &out); err != nil {
		return nil, err
	}
	if out.Error != "" {
		return nil, &apperr.BackendError{Message: out.Error}
	}

	if c.cache != nil {
		c.cache.Set(key, &out, gocache.DefaultExpiration)
	}
	return &out, nil
}

// MoreQuestions requests additional questions, telling the backend which
// question texts the client already holds.
func (c *Client) MoreQuestions(ctx context.Context, name string, existing []string) ([]Question, error) {
	req := struct {
		Name     string   `json:"name"`
		Existing []string `json:"existing"`
	}{Name: name, Existing: existing}

	var out struct {
		Questions []Question `json:"questions"`
	}
	if err := c.postJSON(ctx, "/fetch-more-questions", req, &out); err != nil {
		return nil, err
	}
	return out.Questions, nil
}

// MockTest generates a fresh multiple-choice quiz for a company.
func (c *Client) MockTest(ctx context.Context, name string) ([]MockQuestion, error) {
	var out struct {
		Quiz []MockQuestion `json:"quiz"`
	}
	if err := c.postJSON(ctx, "/generate-mock-test", map[string]string{"name": name}, &out); err != nil {
		return nil, err
	}
	return out.Quiz, nil
}

// ScoreResume uploads a PDF resume for scoring. The upload uses the
// multipart field name "file".
func (c *Client) ScoreResume(ctx context.Context, filename string, file io.Reader) (*ResumeAudit, error) {
	const op = "score-resume"

	var body strings.Builder
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("%s: create form file: %w", op, err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("%s: read resume: %w", op, err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("%s: finalize upload: %w", op, err)
	}

	resp, err := c.http.Do(ctx, &transport.Request{
		Method:      http.MethodPost,
		URL:         c.baseURL + "/score-resume",
		Body:        body.String(),
		ContentType: mw.FormDataContentType(),
	})
	if err != nil {
		return nil, apperr.Network(op, err)
	}
	if !resp.OK() {
		return nil, apperr.Network(op, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var out ResumeAudit
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		return nil, apperr.Network(op, fmt.Errorf("decode response: %w", err))
	}
	return &out, nil
}

// postJSON sends payload to the given path and decodes the response into out.
func (c *Client) postJSON(ctx context.Context, path string, payload, out any) error {
	op := strings.TrimPrefix(path, "/")

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%s: encode request: %w", op, err)
	}

	start := time.Now()
	resp, err := c.http.Do(ctx, &transport.Request{
		Method:      http.MethodPost,
		URL:         c.baseURL + path,
		Body:        string(body),
		ContentType: "application/json",
	})
	if err != nil {
		return apperr.Network(op, err)
	}
	if !resp.OK() {
		return apperr.Network(op, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	if err := json.Unmarshal(resp.Body, out); err != nil {
		return apperr.Network(op, fmt.Errorf("decode response: %w", err))
	}

	c.logger.Debug("backend call",
		slog.String("op", op),
		slog.Duration("duration", time.Since(start)),
	)
	return nil
}
