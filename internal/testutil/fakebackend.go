// Package testutil provides in-process fake servers for package tests.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
)

// NewPrepServer starts a fake interview-prep backend on a local port.
// The returned server should be closed after use.
func NewPrepServer() *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/ask-ai", handleAskAI)
	mux.HandleFunc("/get-interview-data", handleInterviewData)
	mux.HandleFunc("/fetch-more-questions", handleMoreQuestions)
	mux.HandleFunc("/generate-mock-test", handleMockTest)
	mux.HandleFunc("/score-resume", handleScoreResume)
	return httptest.NewServer(mux)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func handleAskAI(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Query string `json:"query"`
	}
	_ = json.NewDecoder(r.Body).Decode(&in)
	if strings.Contains(strings.ToLower(in.Query), "boom") {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{
		"answer": "Practice data structures and explain your reasoning out loud.",
		"citations": []map[string]string{
			{"title": "Interview Guide", "link": "https://example.com/guide"},
		},
	})
}

func handleInterviewData(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Name string `json:"name"`
	}
	_ = json.NewDecoder(r.Body).Decode(&in)
	switch in.Name {
	case "Unknown":
		writeJSON(w, map[string]string{"error": "Not found"})
	case "Flaky":
		http.Error(w, "bad gateway", http.StatusBadGateway)
	default:
		writeJSON(w, map[string]any{
			"company_brief": in.Name + " is a technology company.",
			"roadmap": []map[string]string{
				{"week": "Week 1", "focus": "Fundamentals", "details": "Arrays, strings, hashing."},
			},
			"rounds": []map[string]string{
				{"name": "Online Assessment", "description": "Two coding problems in 90 minutes."},
			},
			"questions": []map[string]string{
				{"category": "DSA", "question": "Reverse a linked list.", "answer": "Iterate and flip pointers."},
				{"category": "Systems", "question": "Explain HTTP caching.", "answer": "Use Cache-Control and ETags."},
			},
			"practice_links": []map[string]string{
				{"title": "LeetCode", "link": "https://leetcode.com"},
			},
		})
	}
}

func handleMoreQuestions(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Name     string   `json:"name"`
		Existing []string `json:"existing"`
	}
	_ = json.NewDecoder(r.Body).Decode(&in)
	writeJSON(w, map[string]any{
		"questions": []map[string]string{
			// Duplicate of a seed question, plus one genuinely new.
			{"category": "DSA", "question": "Reverse a linked list.", "answer": "Iterate and flip pointers."},
			{"category": "Design", "question": "Design a URL shortener.", "answer": "Hash the URL and store the mapping."},
		},
	})
}

func handleMockTest(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Name string `json:"name"`
	}
	_ = json.NewDecoder(r.Body).Decode(&in)
	if in.Name == "Flaky" {
		http.Error(w, "bad gateway", http.StatusBadGateway)
		return
	}
	// correct_answer arrives as a number for one question and a string
	// for the other, matching the loose typing seen in the wild.
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"quiz":[
		{"question":"Which structure gives O(1) lookup?","options":["Array","Hash map","Linked list","Stack"],"correct_answer":1,"explanation":"Hash maps average O(1) lookups."},
		{"question":"Which HTTP verb is idempotent?","options":["POST","PUT"],"correct_answer":"1","explanation":"PUT replaces the resource."}
	]}`))
}

func handleScoreResume(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(1 << 20); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	if _, _, err := r.FormFile("file"); err != nil {
		http.Error(w, "missing file", http.StatusBadRequest)
		return
	}
	writeJSON(w, map[string]any{
		"score":     78,
		"ats_score": 82,
		"grade":     "B+",
		"summary":   "Solid resume with room for keyword coverage.",
		"section_scores": map[string]float64{
			"experience": 80,
			"skills":     75,
		},
		"strengths":         []string{"Clear project impact"},
		"improvements":      []string{"Add quantified results"},
		"keywords_found":    []string{"Go", "SQL"},
		"missing_keywords":  []string{"Kubernetes"},
		"recommended_roles": []string{"Backend Engineer"},
	})
}
