package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/careerflow/careerflow-cli/internal/api"
	"github.com/careerflow/careerflow-cli/internal/apperr"
	"github.com/careerflow/careerflow-cli/internal/auth"
	"github.com/careerflow/careerflow-cli/internal/store"
)

// searchFallback is shown when the AI assistant cannot be reached.
const searchFallback = "Sorry, I couldn't reach the server. Make sure it's running!"

// defaultRevertDelay is how long a successful profile update shows its
// success flag before reverting to idle.
const defaultRevertDelay = 3 * time.Second

// slot identifies one logical async request slot. Each slot carries a
// monotonically increasing sequence number; a response whose sequence is not
// the latest issued for its slot is discarded, so a slow stale response can
// never overwrite newer state.
type slot int

const (
	slotCompany slot = iota
	slotSearch
	slotMock
	slotMore
	slotAudit
	slotCount
)

// Controller owns the view state and is the only place it mutates. All
// mutation happens under one mutex; backend calls are issued outside it.
type Controller struct {
	backend   api.Backend
	sessions  *auth.Controller
	history   store.Store
	logger    *slog.Logger
	catalog   []Company
	revertDly time.Duration

	mu          sync.Mutex
	state       State
	seq         [slotCount]uint64
	settingsGen uint64
	lastUID     string
	unsubscribe func()
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithLogger sets the controller logger.
func WithLogger(logger *slog.Logger) ControllerOption {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithHistory records completed activities (roadmap fetches, mock scores,
// resume audits) into the given store.
func WithHistory(s store.Store) ControllerOption {
	return func(c *Controller) {
		c.history = s
	}
}

// WithCompanies replaces the built-in company catalog.
func WithCompanies(catalog []Company) ControllerOption {
	return func(c *Controller) {
		c.catalog = catalog
	}
}

// WithRevertDelay overrides the success-to-idle delay of profile updates.
func WithRevertDelay(d time.Duration) ControllerOption {
	return func(c *Controller) {
		c.revertDly = d
	}
}

// NewController creates the view-state controller. It subscribes to session
// changes so that signing out always wipes the view payload.
func NewController(backend api.Backend, sessions *auth.Controller, opts ...ControllerOption) *Controller {
	c := &Controller{
		backend:   backend,
		sessions:  sessions,
		logger:    slog.Default(),
		catalog:   DefaultCompanies,
		revertDly: defaultRevertDelay,
		state:     newState(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.unsubscribe = sessions.Subscribe(c.onSessionChange)
	return c
}

// Close tears down the session subscription.
func (c *Controller) Close() {
	if c.unsubscribe != nil {
		c.unsubscribe()
		c.unsubscribe = nil
	}
}

// State returns a copy of the current view state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// onSessionChange reacts to the session controller. Sign-out, and a switch
// to a different account, discard every view payload; a same-user refresh
// only syncs the settings name draft.
func (c *Controller) onSessionChange(sess *auth.Session) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if sess == nil {
		c.state = newState()
		c.lastUID = ""
		// Invalidate everything in flight.
		for s := slot(0); s < slotCount; s++ {
			c.seq[s]++
		}
		c.settingsGen++
		return
	}

	if sess.UID != c.lastUID {
		c.state = newState()
		for s := slot(0); s < slotCount; s++ {
			c.seq[s]++
		}
		c.settingsGen++
		c.lastUID = sess.UID
	}
	c.state.Settings.NameDraft = sess.DisplayName
}

// issue bumps and returns the sequence number for a slot. Callers must hold
// the mutex.
func (c *Controller) issue(s slot) uint64 {
	c.seq[s]++
	return c.seq[s]
}

// latest reports whether seq is still the most recently issued number for
// the slot. Callers must hold the mutex.
func (c *Controller) latest(s slot, seq uint64) bool {
	return c.seq[s] == seq
}

// requireSession gates backend-driven transitions on an existing session.
func (c *Controller) requireSession() error {
	if c.sessions.Current() == nil {
		return &apperr.AuthError{Message: "Not signed in."}
	}
	return nil
}

// ------------------------------------------------------------------------
// Dashboard
// ------------------------------------------------------------------------

// SetCategoryFilter sets the dashboard category filter.
func (c *Controller) SetCategoryFilter(category string) error {
	switch category {
	case CategoryAll, CategoryService, CategoryProduct:
	default:
		return apperr.Validation("category", fmt.Sprintf("unknown category %q", category))
	}
	c.mu.Lock()
	c.state.CategoryFilter = category
	c.mu.Unlock()
	return nil
}

// FilteredCompanies returns the catalog filtered by the active category.
func (c *Controller) FilteredCompanies() []Company {
	c.mu.Lock()
	filter := c.state.CategoryFilter
	c.mu.Unlock()

	if filter == CategoryAll {
		return append([]Company(nil), c.catalog...)
	}
	var out []Company
	for _, comp := range c.catalog {
		if comp.Category == filter {
			out = append(out, comp)
		}
	}
	return out
}

// Typeahead recomputes the suggestion list for the given input. It never
// transitions the view: only the suggestion payload changes.
func (c *Controller) Typeahead(query string) []Company {
	matches := matchCompanies(c.catalog, query, maxSuggestions)

	c.mu.Lock()
	c.state.Search.Query = query
	c.state.Suggestions = matches
	c.mu.Unlock()

	return append([]Company(nil), matches...)
}

// Search submits the query to the AI assistant and moves to the search
// view. A backend failure surfaces as the fallback answer text; it is never
// fatal.
func (c *Controller) Search(ctx context.Context, query string) error {
	if err := c.requireSession(); err != nil {
		return err
	}
	if query == "" {
		return apperr.Validation("query", "search query must not be empty")
	}

	c.mu.Lock()
	seq := c.issue(slotSearch)
	c.state.View = ViewSearch
	c.state.Suggestions = nil
	c.state.Search = SearchState{Query: query, Loading: true}
	c.mu.Unlock()

	ans, err := c.backend.AskAI(ctx, query)

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.latest(slotSearch, seq) {
		return nil
	}
	c.state.Search.Loading = false
	if err != nil {
		c.logger.Warn("ask-ai failed", slog.String("query", query), slog.Any("error", err))
		c.state.Search.Answer = searchFallback
		c.state.Search.Citations = nil
		return nil
	}
	c.state.Search.Answer = ans.Answer
	c.state.Search.Citations = ans.Citations
	return nil
}

// Back returns to the dashboard and clears the selected company.
func (c *Controller) Back() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.View = ViewDashboard
	c.state.Company = CompanyState{Tab: TabProcess, Expanded: -1}
	// An in-flight company fetch must not resurrect the detail view.
	c.seq[slotCompany]++
	c.seq[slotMock]++
	c.seq[slotMore]++
}

// OpenResume switches to the resume-audit view.
func (c *Controller) OpenResume() {
	c.setView(ViewResume)
}

// OpenSettings switches to the settings view.
func (c *Controller) OpenSettings() {
	c.setView(ViewSettings)
}

func (c *Controller) setView(v View) {
	c.mu.Lock()
	c.state.View = v
	c.mu.Unlock()
}

// saveHistory best-effort records a completed activity.
func (c *Controller) saveHistory(rec *store.Record) {
	if c.history == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.history.Save(ctx, rec); err != nil {
		c.logger.Warn("history save failed", slog.String("kind", string(rec.Kind)), slog.Any("error", err))
	}
}
