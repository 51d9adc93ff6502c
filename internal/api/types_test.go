package api

import (
	"encoding/json"
	"testing"
)

func TestAnswerIndexMatches(t *testing.T) {
	cases := []struct {
		name     string
		raw      string
		selected int
		want     bool
	}{
		{"number", `2`, 2, true},
		{"number mismatch", `2`, 1, false},
		{"string", `"2"`, 2, true},
		{"string mismatch", `"2"`, 0, false},
		{"padded string", `" 1 "`, 1, true},
		{"leading zero", `"01"`, 1, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var a AnswerIndex
			if err := json.Unmarshal([]byte(tc.raw), &a); err != nil {
				t.Fatalf("unmarshal %s: %v", tc.raw, err)
			}
			if got := a.Matches(tc.selected); got != tc.want {
				t.Errorf("Matches(%d) = %v, want %v (raw %s)", tc.selected, got, tc.want, tc.raw)
			}
		})
	}
}

func TestAnswerIndexMarshalNormalizes(t *testing.T) {
	var a AnswerIndex
	if err := json.Unmarshal([]byte(`"3"`), &a); err != nil {
		t.Fatal(err)
	}
	b, err := json.Marshal(a)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "3" {
		t.Errorf("marshal = %s, want 3", b)
	}
}

func TestMockQuestionDecoding(t *testing.T) {
	raw := `{"question":"Q","options":["a","b","c"],"correct_answer":"2","explanation":"because"}`
	var q MockQuestion
	if err := json.Unmarshal([]byte(raw), &q); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if q.CorrectAnswer.String() != "2" {
		t.Errorf("CorrectAnswer = %q", q.CorrectAnswer)
	}
	if !q.CorrectAnswer.Matches(2) {
		t.Error("string index should match selected option 2")
	}
}
