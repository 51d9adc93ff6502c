package store

import (
	"context"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveAssignsID(t *testing.T) {
	s := newTestStore(t)
	rec := &Record{Kind: KindRoadmap, Company: "Google"}

	if err := s.Save(context.Background(), rec); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if rec.ID == "" {
		t.Error("Save should assign an ID")
	}
	if rec.CreatedAt.IsZero() {
		t.Error("Save should assign a timestamp")
	}
}

func TestListNewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, company := range []string{"TCS", "Google", "Amazon"} {
		rec := &Record{
			Kind:      KindMockTest,
			Company:   company,
			Score:     float64(50 + i*10),
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}
		if err := s.Save(ctx, rec); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}

	records, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("len = %d", len(records))
	}
	if records[0].Company != "Amazon" || records[2].Company != "TCS" {
		t.Errorf("order = %s, %s, %s", records[0].Company, records[1].Company, records[2].Company)
	}
	if records[0].Score != 70 {
		t.Errorf("score = %v", records[0].Score)
	}
}

func TestListByCompany(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, company := range []string{"Google", "Amazon", "Google"} {
		if err := s.Save(ctx, &Record{Kind: KindRoadmap, Company: company}); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}

	records, err := s.ListByCompany(ctx, "Google")
	if err != nil {
		t.Fatalf("ListByCompany: %v", err)
	}
	if len(records) != 2 {
		t.Errorf("len = %d, want 2", len(records))
	}
	for _, rec := range records {
		if rec.Company != "Google" {
			t.Errorf("company = %q", rec.Company)
		}
	}
}

func TestSaveUpsertsByID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rec := &Record{Kind: KindResumeAudit, Company: "resume.pdf", Score: 60, Grade: "C"}
	if err := s.Save(ctx, rec); err != nil {
		t.Fatalf("Save: %v", err)
	}

	rec.Score = 85
	rec.Grade = "A"
	if err := s.Save(ctx, rec); err != nil {
		t.Fatalf("second Save: %v", err)
	}

	records, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("len = %d, want 1 (upsert)", len(records))
	}
	if records[0].Score != 85 || records[0].Grade != "A" {
		t.Errorf("record = %+v", records[0])
	}
}

func TestDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rec := &Record{Kind: KindRoadmap, Company: "Meta"}
	if err := s.Save(ctx, rec); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.Delete(ctx, rec.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	records, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("len = %d, want 0", len(records))
	}

	if err := s.Delete(ctx, "no-such-id"); err != nil {
		t.Errorf("deleting unknown ID should not fail: %v", err)
	}
}
