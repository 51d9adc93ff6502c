// Package store persists a local history of completed prep activities so
// past roadmap fetches, mock-test scores and resume audits can be reviewed.
package store

import (
	"context"
	"time"
)

// ActivityKind classifies a history record.
type ActivityKind string

const (
	KindRoadmap     ActivityKind = "roadmap"
	KindMockTest    ActivityKind = "mock-test"
	KindResumeAudit ActivityKind = "resume-audit"
)

// Record is one completed activity.
type Record struct {
	ID        string       `json:"id"`
	Kind      ActivityKind `json:"kind"`
	Company   string       `json:"company"`
	Score     float64      `json:"score,omitempty"`
	Grade     string       `json:"grade,omitempty"`
	Detail    string       `json:"detail,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}

// Store persists and retrieves activity records.
type Store interface {
	Save(ctx context.Context, rec *Record) error
	List(ctx context.Context) ([]*Record, error)
	ListByCompany(ctx context.Context, company string) ([]*Record, error)
	Delete(ctx context.Context, id string) error
	Close() error
}
