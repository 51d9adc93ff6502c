// Package app implements the view state machine: which screen is active,
// the data it holds, and every transition a user action or a completed
// backend request can cause.
package app

import (
	"strings"

	"github.com/careerflow/careerflow-cli/internal/api"
)

// View identifies the active screen. Exactly one view is active at a time.
type View int

const (
	ViewDashboard View = iota
	ViewSearch
	ViewCompany
	ViewResume
	ViewSettings
)

// String returns the view name.
func (v View) String() string {
	names := [...]string{"dashboard", "search", "company", "resume", "settings"}
	if int(v) < len(names) {
		return names[v]
	}
	return "unknown"
}

// Tab is the active sub-tab of the company-detail view.
type Tab string

const (
	TabProcess   Tab = "process"
	TabQuestions Tab = "questions"
	TabMock      Tab = "mock"
)

// UpdateStatus tracks a profile-update submission.
type UpdateStatus string

const (
	StatusIdle     UpdateStatus = "idle"
	StatusUpdating UpdateStatus = "updating"
	StatusSuccess  UpdateStatus = "success"
	StatusError    UpdateStatus = "error"
)

// Category filter values for the dashboard company list.
const (
	CategoryAll     = "All"
	CategoryService = "Service"
	CategoryProduct = "Product"
)

// Company is one entry of the static dashboard company list.
type Company struct {
	Name     string
	Category string
}

// DefaultCompanies is the built-in company catalog shown on the dashboard.
var DefaultCompanies = []Company{
	{Name: "TCS", Category: CategoryService},
	{Name: "Infosys", Category: CategoryService},
	{Name: "Google", Category: CategoryProduct},
	{Name: "Amazon", Category: CategoryProduct},
	{Name: "Wipro", Category: CategoryService},
	{Name: "Microsoft", Category: CategoryProduct},
	{Name: "Accenture", Category: CategoryService},
	{Name: "Meta", Category: CategoryProduct},
}

// maxSuggestions caps the typeahead suggestion list.
const maxSuggestions = 5

// FileRef describes a selected resume file that has not necessarily been
// uploaded yet.
type FileRef struct {
	Name string
	Path string
}

// SearchState is the payload of the AI search-result view.
type SearchState struct {
	Query     string
	Loading   bool
	Answer    string
	Citations []api.Citation
}

// CompanyState is the payload of the company-detail view.
type CompanyState struct {
	Name        string
	Loading     bool
	Err         string
	Data        *api.InterviewData
	Tab         Tab
	Expanded    int // expanded question index, -1 = none
	LoadingMore bool
	MockLoading bool
	Mock        []api.MockQuestion
	Answers     map[int]int // question index -> selected option index
}

// ResumeState is the payload of the resume-audit view.
type ResumeState struct {
	File    *FileRef
	Loading bool
	Result  *api.ResumeAudit
}

// SettingsState is the payload of the settings view.
type SettingsState struct {
	NameDraft string
	Status    UpdateStatus
}

// State holds the complete view state. It is owned by the Controller; copies
// handed out via Controller.State are safe to read concurrently.
type State struct {
	View           View
	CategoryFilter string
	Suggestions    []Company
	Search         SearchState
	Company        CompanyState
	Resume         ResumeState
	Settings       SettingsState
}

// newState returns a fresh pre-dashboard state.
func newState() State {
	return State{
		View:           ViewDashboard,
		CategoryFilter: CategoryAll,
		Company:        CompanyState{Tab: TabProcess, Expanded: -1},
		Settings:       SettingsState{Status: StatusIdle},
	}
}

// clone returns a deep enough copy for safe external reads. The Data and
// Result pointers are shared: they are treated as immutable once applied.
func (s State) clone() State {
	out := s
	if s.Suggestions != nil {
		out.Suggestions = append([]Company(nil), s.Suggestions...)
	}
	if s.Search.Citations != nil {
		out.Search.Citations = append([]api.Citation(nil), s.Search.Citations...)
	}
	if s.Company.Mock != nil {
		out.Company.Mock = append([]api.MockQuestion(nil), s.Company.Mock...)
	}
	if s.Company.Answers != nil {
		out.Company.Answers = make(map[int]int, len(s.Company.Answers))
		for k, v := range s.Company.Answers {
			out.Company.Answers[k] = v
		}
	}
	if s.Resume.File != nil {
		f := *s.Resume.File
		out.Resume.File = &f
	}
	return out
}

// matchCompanies returns the first max companies whose name contains query
// case-insensitively, in catalog order.
func matchCompanies(catalog []Company, query string, max int) []Company {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	var out []Company
	for _, comp := range catalog {
		if strings.Contains(strings.ToLower(comp.Name), q) {
			out = append(out, comp)
			if len(out) == max {
				break
			}
		}
	}
	return out
}
