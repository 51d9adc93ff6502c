// Package api implements the client for the interview-preparation backend.
// All endpoints are JSON-over-POST except score-resume, which is a multipart
// file upload.
package api

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Citation is a source reference backing an AI-generated answer.
type Citation struct {
	Title string `json:"title"`
	Link  string `json:"link"`
}

// Answer is the response of /ask-ai.
type Answer struct {
	Answer    string     `json:"answer"`
	Citations []Citation `json:"citations"`
}

// Round describes one interview round.
type Round struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Question is a single practice question. Answer may be absent.
type Question struct {
	Category string `json:"category"`
	Question string `json:"question"`
	Tip      string `json:"tip"`
	Answer   string `json:"answer,omitempty"`
}

// RoadmapWeek is one entry of the optional preparation roadmap.
type RoadmapWeek struct {
	Week    string `json:"week"`
	Focus   string `json:"focus"`
	Details string `json:"details"`
}

// PracticeLink is an external preparation resource.
type PracticeLink struct {
	Title string `json:"title"`
	Link  string `json:"link"`
}

// InterviewData is the response of /get-interview-data. Error, when set,
// means the backend could not produce data for the requested company.
type InterviewData struct {
	Error         string         `json:"error,omitempty"`
	CompanyBrief  string         `json:"company_brief"`
	PracticeLinks []PracticeLink `json:"practice_links,omitempty"`
	Roadmap       []RoadmapWeek  `json:"roadmap,omitempty"`
	Rounds        []Round        `json:"rounds"`
	Questions     []Question     `json:"questions"`
}

// MockQuestion is one multiple-choice question of a generated mock test.
type MockQuestion struct {
	Question      string      `json:"question"`
	Options       []string    `json:"options"`
	CorrectAnswer AnswerIndex `json:"correct_answer"`
	Explanation   string      `json:"explanation"`
}

// ResumeAudit is the response of /score-resume.
type ResumeAudit struct {
	Score            int                `json:"score"`
	ATSScore         int                `json:"ats_score"`
	Grade            string             `json:"grade"`
	Summary          string             `json:"summary"`
	SectionScores    map[string]float64 `json:"section_scores"`
	Strengths        []string           `json:"strengths"`
	Improvements     []string           `json:"improvements"`
	KeywordsFound    []string           `json:"keywords_found,omitempty"`
	MissingKeywords  []string           `json:"missing_keywords,omitempty"`
	RecommendedRoles []string           `json:"recommended_roles,omitempty"`
}

// AnswerIndex is a mock-test correct-answer index. The backend encodes it
// inconsistently, sometimes as a JSON number and sometimes as a string, so
// both sides of a correctness check are normalized to a canonical string
// form before comparison.
type AnswerIndex struct {
	raw string
}

// NewAnswerIndex builds an AnswerIndex from an option index. Useful in tests.
func NewAnswerIndex(i int) AnswerIndex {
	return AnswerIndex{raw: strconv.Itoa(i)}
}

// UnmarshalJSON accepts both `2` and `"2"`.
func (a *AnswerIndex) UnmarshalJSON(b []byte) error {
	var s string
	if bytes.HasPrefix(bytes.TrimSpace(b), []byte(`"`)) {
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
	} else {
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return err
		}
		s = n.String()
	}
	a.raw = strings.TrimSpace(s)
	return nil
}

// MarshalJSON always emits the numeric form when possible.
func (a AnswerIndex) MarshalJSON() ([]byte, error) {
	if _, err := strconv.ParseInt(a.canonical(), 10, 64); err == nil {
		return []byte(a.canonical()), nil
	}
	return json.Marshal(a.raw)
}

func (a AnswerIndex) canonical() string {
	if n, err := strconv.ParseInt(a.raw, 10, 64); err == nil {
		return strconv.FormatInt(n, 10)
	}
	return a.raw
}

// Matches reports whether the selected option index equals this index,
// tolerating the string-typed encoding.
func (a AnswerIndex) Matches(selected int) bool {
	return a.canonical() == strconv.Itoa(selected)
}

// String returns the canonical form.
func (a AnswerIndex) String() string {
	return a.canonical()
}
