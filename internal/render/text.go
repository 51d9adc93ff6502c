package render

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/fatih/color"

	"github.com/careerflow/careerflow-cli/internal/app"
)

const (
	doubleLine = "═" // ═
	singleLine = "─" // ─
	lineWidth  = 56
)

var (
	accent  = color.New(color.FgMagenta, color.Bold)
	good    = color.New(color.FgGreen)
	bad     = color.New(color.FgRed)
	subtle  = color.New(color.Faint)
	heading = color.New(color.Bold)
)

// TextRenderer outputs plain terminal text for the active view.
type TextRenderer struct{}

// Format returns "text".
func (r *TextRenderer) Format() string {
	return "text"
}

// Render writes the active view to w.
func (r *TextRenderer) Render(state app.State, w io.Writer) error {
	b := &strings.Builder{}

	doubleBar := strings.Repeat(doubleLine, lineWidth)
	fmt.Fprintln(b, doubleBar)
	fmt.Fprintf(b, "careerflow - %s\n", state.View)
	fmt.Fprintln(b, doubleBar)

	switch state.View {
	case app.ViewDashboard:
		r.dashboard(b, state)
	case app.ViewSearch:
		r.search(b, state)
	case app.ViewCompany:
		r.company(b, state)
	case app.ViewResume:
		r.resume(b, state)
	case app.ViewSettings:
		r.settings(b, state)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func (r *TextRenderer) dashboard(b *strings.Builder, state app.State) {
	fmt.Fprintf(b, "Filter: %s\n", state.CategoryFilter)
	if len(state.Suggestions) > 0 {
		fmt.Fprintln(b, heading.Sprint("Suggestions:"))
		for _, comp := range state.Suggestions {
			fmt.Fprintf(b, "  %s  %s\n", accent.Sprint(comp.Name), subtle.Sprint(comp.Category))
		}
	}
}

func (r *TextRenderer) search(b *strings.Builder, state app.State) {
	fmt.Fprintf(b, "Query: %q\n", state.Search.Query)
	if state.Search.Loading {
		fmt.Fprintln(b, "Loading...")
		return
	}
	fmt.Fprintln(b, strings.Repeat(singleLine, lineWidth))
	if state.Search.Answer == "" {
		fmt.Fprintln(b, subtle.Sprint("No answer generated."))
		return
	}
	fmt.Fprintln(b, state.Search.Answer)
	if len(state.Search.Citations) > 0 {
		fmt.Fprintln(b, heading.Sprint("Sources:"))
		for _, cite := range state.Search.Citations {
			fmt.Fprintf(b, "  - %s (%s)\n", cite.Title, subtle.Sprint(cite.Link))
		}
	}
}

func (r *TextRenderer) company(b *strings.Builder, state app.State) {
	cs := state.Company
	fmt.Fprintf(b, "Company: %s  [tab: %s]\n", accent.Sprint(cs.Name), cs.Tab)

	if cs.Loading {
		fmt.Fprintln(b, "Loading...")
		return
	}
	if cs.Err != "" {
		fmt.Fprintln(b, bad.Sprint(cs.Err))
		fmt.Fprintln(b, subtle.Sprint("Run the same command again to retry."))
		return
	}
	if cs.Data == nil {
		return
	}

	switch cs.Tab {
	case app.TabProcess:
		fmt.Fprintln(b, strings.Repeat(singleLine, lineWidth))
		fmt.Fprintln(b, cs.Data.CompanyBrief)
		if len(cs.Data.Roadmap) > 0 {
			fmt.Fprintln(b, heading.Sprint("Roadmap:"))
			for _, week := range cs.Data.Roadmap {
				fmt.Fprintf(b, "  %s  %s - %s\n", accent.Sprint(week.Week), week.Focus, week.Details)
			}
		}
		fmt.Fprintln(b, heading.Sprint("Rounds:"))
		for i, round := range cs.Data.Rounds {
			fmt.Fprintf(b, "  %d. %s: %s\n", i+1, round.Name, round.Description)
		}
		for _, link := range cs.Data.PracticeLinks {
			fmt.Fprintf(b, "  %s %s\n", subtle.Sprint("link:"), link.Link)
		}
	case app.TabQuestions:
		for i, q := range cs.Data.Questions {
			fmt.Fprintf(b, "%2d. [%s] %s\n", i+1, accent.Sprint(q.Category), q.Question)
			fmt.Fprintf(b, "    Tip: %s\n", q.Tip)
			if cs.Expanded == i && q.Answer != "" {
				fmt.Fprintf(b, "    %s %s\n", good.Sprint("Answer:"), q.Answer)
			}
		}
	case app.TabMock:
		r.mock(b, cs)
	}
}

func (r *TextRenderer) mock(b *strings.Builder, cs app.CompanyState) {
	if cs.MockLoading {
		fmt.Fprintln(b, "Generating mock test...")
		return
	}
	fmt.Fprintf(b, "Mock test: %d / %d answered\n", len(cs.Answers), len(cs.Mock))
	if len(cs.Mock) > 0 && len(cs.Answers) == len(cs.Mock) {
		matches := 0
		for i, q := range cs.Mock {
			if q.CorrectAnswer.Matches(cs.Answers[i]) {
				matches++
			}
		}
		score := int(math.Round(100 * float64(matches) / float64(len(cs.Mock))))
		fmt.Fprintf(b, "%s\n", accent.Sprintf("Score: %d%%", score))
	}
	for i, q := range cs.Mock {
		fmt.Fprintf(b, "%2d. %s\n", i+1, q.Question)
		for j, opt := range q.Options {
			marker := "   "
			if selected, ok := cs.Answers[i]; ok {
				switch {
				case q.CorrectAnswer.Matches(j):
					marker = good.Sprint(" ✓ ")
				case selected == j:
					marker = bad.Sprint(" ✗ ")
				}
			}
			fmt.Fprintf(b, "  %s%c) %s\n", marker, 'A'+j, opt)
		}
		if _, ok := cs.Answers[i]; ok && q.Explanation != "" {
			fmt.Fprintf(b, "     %s %s\n", subtle.Sprint("Insight:"), q.Explanation)
		}
	}
}

func (r *TextRenderer) resume(b *strings.Builder, state app.State) {
	rs := state.Resume
	if rs.File != nil {
		fmt.Fprintf(b, "File: %s\n", rs.File.Name)
	}
	if rs.Loading {
		fmt.Fprintln(b, "Analyzing...")
		return
	}
	if rs.Result == nil {
		fmt.Fprintln(b, subtle.Sprint("No audit yet."))
		return
	}

	res := rs.Result
	fmt.Fprintf(b, "Score: %s  Grade: %s\n", accent.Sprintf("%d/100", res.Score), res.Grade)
	fmt.Fprintln(b, res.Summary)
	if len(res.SectionScores) > 0 {
		fmt.Fprintln(b, heading.Sprint("Sections:"))
		for section, score := range res.SectionScores {
			fmt.Fprintf(b, "  %-20s %.0f/10\n", section, score)
		}
	}
	if len(res.Strengths) > 0 {
		fmt.Fprintln(b, good.Sprint("Strengths:"))
		for _, s := range res.Strengths {
			fmt.Fprintf(b, "  + %s\n", s)
		}
	}
	if len(res.Improvements) > 0 {
		fmt.Fprintln(b, bad.Sprint("Improvements:"))
		for _, s := range res.Improvements {
			fmt.Fprintf(b, "  - %s\n", s)
		}
	}
}

func (r *TextRenderer) settings(b *strings.Builder, state app.State) {
	fmt.Fprintf(b, "Display name: %s\n", state.Settings.NameDraft)
	switch state.Settings.Status {
	case app.StatusUpdating:
		fmt.Fprintln(b, "Saving...")
	case app.StatusSuccess:
		fmt.Fprintln(b, good.Sprint("Profile updated successfully!"))
	case app.StatusError:
		fmt.Fprintln(b, bad.Sprint("Failed to update profile."))
	}
}
