package render

import (
	"encoding/json"
	"io"

	"github.com/careerflow/careerflow-cli/internal/api"
	"github.com/careerflow/careerflow-cli/internal/app"
)

// JSONRenderer outputs structured JSON.
type JSONRenderer struct {
	// Compact outputs single-line JSON when true (no indentation).
	Compact bool
}

// Format returns "json".
func (r *JSONRenderer) Format() string {
	return "json"
}

// jsonOutput is the top-level JSON structure.
type jsonOutput struct {
	View     string           `json:"view"`
	Search   *jsonSearch      `json:"search,omitempty"`
	Company  *jsonCompany     `json:"company,omitempty"`
	Resume   *api.ResumeAudit `json:"resume,omitempty"`
	Settings *jsonSettings    `json:"settings,omitempty"`
}

type jsonSearch struct {
	Query     string         `json:"query"`
	Answer    string         `json:"answer,omitempty"`
	Citations []api.Citation `json:"citations,omitempty"`
}

type jsonCompany struct {
	Name    string             `json:"name"`
	Tab     string             `json:"tab"`
	Error   string             `json:"error,omitempty"`
	Data    *api.InterviewData `json:"data,omitempty"`
	Mock    []api.MockQuestion `json:"mock,omitempty"`
	Answers map[int]int        `json:"answers,omitempty"`
}

type jsonSettings struct {
	DisplayName string `json:"display_name"`
	Status      string `json:"status"`
}

// Render writes the active view as JSON.
func (r *JSONRenderer) Render(state app.State, w io.Writer) error {
	out := jsonOutput{View: state.View.String()}

	switch state.View {
	case app.ViewSearch:
		out.Search = &jsonSearch{
			Query:     state.Search.Query,
			Answer:    state.Search.Answer,
			Citations: state.Search.Citations,
		}
	case app.ViewCompany:
		out.Company = &jsonCompany{
			Name:    state.Company.Name,
			Tab:     string(state.Company.Tab),
			Error:   state.Company.Err,
			Data:    state.Company.Data,
			Mock:    state.Company.Mock,
			Answers: state.Company.Answers,
		}
	case app.ViewResume:
		out.Resume = state.Resume.Result
	case app.ViewSettings:
		out.Settings = &jsonSettings{
			DisplayName: state.Settings.NameDraft,
			Status:      string(state.Settings.Status),
		}
	}

	enc := json.NewEncoder(w)
	if !r.Compact {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(out)
}
