package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/careerflow/careerflow-cli/internal/api"
	"github.com/careerflow/careerflow-cli/internal/apperr"
	"github.com/careerflow/careerflow-cli/internal/store"
)

// companyFetchFallback mirrors the message shown when the backend is
// unreachable during a company-detail fetch.
const companyFetchFallback = "Connection Error: Ensure backend is running."

// SelectCompany moves to the company-detail view and fetches the interview
// payload. The name is not required to appear in the static catalog. A
// failure leaves the view in an error state offering Retry.
func (c *Controller) SelectCompany(ctx context.Context, name string) error {
	if err := c.requireSession(); err != nil {
		return err
	}
	if name == "" {
		return apperr.Validation("name", "company name must not be empty")
	}

	c.mu.Lock()
	seq := c.issue(slotCompany)
	// Switching companies drops prior expansion and mock-test state.
	c.seq[slotMock]++
	c.seq[slotMore]++
	c.state.View = ViewCompany
	c.state.Suggestions = nil
	c.state.Search.Query = ""
	c.state.Company = CompanyState{
		Name:     name,
		Loading:  true,
		Tab:      TabProcess,
		Expanded: -1,
	}
	c.mu.Unlock()

	data, err := c.backend.InterviewData(ctx, name)

	c.mu.Lock()
	if !c.latest(slotCompany, seq) {
		c.mu.Unlock()
		return nil
	}
	c.state.Company.Loading = false

	if err != nil {
		var be *apperr.BackendError
		if errors.As(err, &be) {
			c.state.Company.Err = be.Message
		} else {
			c.state.Company.Err = companyFetchFallback
		}
		c.mu.Unlock()
		c.logger.Warn("interview data fetch failed", slog.String("company", name), slog.Any("error", err))
		return err
	}

	c.state.Company.Data = data
	c.state.Company.Tab = TabProcess
	c.mu.Unlock()

	// The history write may be slow; never hold the state lock across it.
	c.saveHistory(&store.Record{
		Kind:    store.KindRoadmap,
		Company: name,
		Detail:  fmt.Sprintf("%d rounds, %d questions", len(data.Rounds), len(data.Questions)),
	})
	return nil
}

// Retry re-issues the company-detail fetch for the currently selected
// company. This is the only request with an explicit retry action.
func (c *Controller) Retry(ctx context.Context) error {
	c.mu.Lock()
	name := c.state.Company.Name
	view := c.state.View
	c.mu.Unlock()

	if view != ViewCompany || name == "" {
		return apperr.Validation("company", "no company selected")
	}
	return c.SelectCompany(ctx, name)
}

// SwitchTab changes the active company sub-tab. Any expanded question is
// closed. Switching to the mock tab issues a mock-test request; the tab only
// becomes active once the quiz arrives.
func (c *Controller) SwitchTab(ctx context.Context, tab Tab) error {
	c.mu.Lock()
	if c.state.View != ViewCompany || c.state.Company.Name == "" {
		c.mu.Unlock()
		return apperr.Validation("tab", "no company selected")
	}
	c.state.Company.Expanded = -1

	switch tab {
	case TabProcess, TabQuestions:
		c.state.Company.Tab = tab
		c.mu.Unlock()
		return nil
	case TabMock:
	default:
		c.mu.Unlock()
		return apperr.Validation("tab", fmt.Sprintf("unknown tab %q", tab))
	}

	name := c.state.Company.Name
	seq := c.issue(slotMock)
	c.state.Company.MockLoading = true
	c.mu.Unlock()

	quiz, err := c.backend.MockTest(ctx, name)

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.latest(slotMock, seq) || c.state.Company.Name != name {
		return nil
	}
	c.state.Company.MockLoading = false
	if err != nil {
		c.logger.Warn("mock test generation failed", slog.String("company", name), slog.Any("error", err))
		return err
	}
	c.state.Company.Mock = quiz
	c.state.Company.Answers = make(map[int]int)
	c.state.Company.Tab = TabMock
	return nil
}

// ToggleQuestion expands the question at index i, or collapses it when it is
// already expanded.
func (c *Controller) ToggleQuestion(i int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Company.Expanded == i {
		c.state.Company.Expanded = -1
		return
	}
	c.state.Company.Expanded = i
}

// SelectMockAnswer records the user's option pick for a mock question. A
// question that already has a recorded answer is locked: the call is a
// no-op and returns false.
func (c *Controller) SelectMockAnswer(questionIndex, optionIndex int) bool {
	c.mu.Lock()

	mock := c.state.Company.Mock
	if questionIndex < 0 || questionIndex >= len(mock) {
		c.mu.Unlock()
		return false
	}
	if optionIndex < 0 || optionIndex >= len(mock[questionIndex].Options) {
		c.mu.Unlock()
		return false
	}
	if c.state.Company.Answers == nil {
		c.state.Company.Answers = make(map[int]int)
	}
	if _, answered := c.state.Company.Answers[questionIndex]; answered {
		c.mu.Unlock()
		return false
	}
	c.state.Company.Answers[questionIndex] = optionIndex

	var rec *store.Record
	if len(c.state.Company.Answers) == len(mock) {
		rec = &store.Record{
			Kind:    store.KindMockTest,
			Company: c.state.Company.Name,
			Score:   float64(c.mockScoreLocked()),
			Detail:  fmt.Sprintf("%d questions", len(mock)),
		}
	}
	c.mu.Unlock()

	if rec != nil {
		c.saveHistory(rec)
	}
	return true
}

// MockComplete reports whether every mock question has a recorded answer.
func (c *Controller) MockComplete() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	mock := c.state.Company.Mock
	return len(mock) > 0 && len(c.state.Company.Answers) == len(mock)
}

// MockScore returns the completion percentage: round(100 * matches / total).
// Correctness compares the recorded option index against the question's
// correct-answer index with both sides normalized, tolerating string-typed
// backend payloads.
func (c *Controller) MockScore() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mockScoreLocked()
}

func (c *Controller) mockScoreLocked() int {
	mock := c.state.Company.Mock
	if len(mock) == 0 {
		return 0
	}
	matches := 0
	for i, q := range mock {
		if selected, ok := c.state.Company.Answers[i]; ok && q.CorrectAnswer.Matches(selected) {
			matches++
		}
	}
	return int(math.Round(100 * float64(matches) / float64(len(mock))))
}

// ResetMockTest clears the answer map and returns the sub-tab to process.
func (c *Controller) ResetMockTest() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Company.Answers = make(map[int]int)
	c.state.Company.Tab = TabProcess
}

// LoadMoreQuestions fetches additional questions and appends them, dropping
// any whose text exactly duplicates a question already present.
func (c *Controller) LoadMoreQuestions(ctx context.Context) error {
	c.mu.Lock()
	if c.state.View != ViewCompany || c.state.Company.Data == nil {
		c.mu.Unlock()
		return apperr.Validation("company", "no company data loaded")
	}
	name := c.state.Company.Name
	existing := make([]string, 0, len(c.state.Company.Data.Questions))
	for _, q := range c.state.Company.Data.Questions {
		existing = append(existing, q.Question)
	}
	seq := c.issue(slotMore)
	c.state.Company.LoadingMore = true
	c.state.Company.Expanded = -1
	c.mu.Unlock()

	more, err := c.backend.MoreQuestions(ctx, name, existing)

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.latest(slotMore, seq) || c.state.Company.Name != name || c.state.Company.Data == nil {
		return nil
	}
	c.state.Company.LoadingMore = false
	if err != nil {
		c.logger.Warn("fetch more questions failed", slog.String("company", name), slog.Any("error", err))
		return err
	}

	// Re-read the live list: it may have changed while the request was out.
	seen := make(map[string]struct{}, len(c.state.Company.Data.Questions))
	for _, q := range c.state.Company.Data.Questions {
		seen[q.Question] = struct{}{}
	}
	var fresh []api.Question
	for _, q := range more {
		if _, dup := seen[q.Question]; dup {
			continue
		}
		seen[q.Question] = struct{}{}
		fresh = append(fresh, q)
	}
	if len(fresh) == 0 {
		return nil
	}

	// Copy-on-write: snapshots handed out by State share the Data pointer,
	// so the grown list goes into a fresh InterviewData value.
	data := *c.state.Company.Data
	data.Questions = make([]api.Question, 0, len(c.state.Company.Data.Questions)+len(fresh))
	data.Questions = append(data.Questions, c.state.Company.Data.Questions...)
	data.Questions = append(data.Questions, fresh...)
	c.state.Company.Data = &data
	return nil
}
