package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/careerflow/careerflow-cli/internal/apperr"
	"github.com/careerflow/careerflow-cli/internal/store"
)

// ErrUpdateInFlight rejects a profile-update submission while a previous one
// is still pending.
var ErrUpdateInFlight = apperr.Validation("displayName", "an update is already in progress")

// SubmitProfileUpdate pushes a new display name through the session
// controller. Status runs idle -> updating -> success|error; success
// auto-reverts to idle after the configured delay. A submit while a previous
// one is updating is rejected.
func (c *Controller) SubmitProfileUpdate(ctx context.Context, name string) error {
	if err := c.requireSession(); err != nil {
		return err
	}

	c.mu.Lock()
	if c.state.Settings.Status == StatusUpdating {
		c.mu.Unlock()
		return ErrUpdateInFlight
	}
	c.state.Settings.Status = StatusUpdating
	c.settingsGen++
	gen := c.settingsGen
	c.mu.Unlock()

	err := c.sessions.UpdateDisplayName(ctx, name)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.settingsGen != gen {
		return nil
	}
	if err != nil {
		c.state.Settings.Status = StatusError
		return err
	}
	c.state.Settings.Status = StatusSuccess
	c.state.Settings.NameDraft = name

	time.AfterFunc(c.revertDly, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		// A newer submission owns the status now.
		if c.settingsGen == gen && c.state.Settings.Status == StatusSuccess {
			c.state.Settings.Status = StatusIdle
		}
	})
	return nil
}

// SelectResumeFile stores the file descriptor without starting analysis.
func (c *Controller) SelectResumeFile(name, path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.View = ViewResume
	c.state.Resume.File = &FileRef{Name: name, Path: path}
}

// RunAudit uploads the selected resume for scoring. Without a selected file
// it fails fast with a validation message. On a backend failure the result
// stays unset and the error is logged.
func (c *Controller) RunAudit(ctx context.Context) error {
	if err := c.requireSession(); err != nil {
		return err
	}

	c.mu.Lock()
	if c.state.Resume.File == nil {
		c.mu.Unlock()
		return apperr.Validation("file", "Please select a PDF file first")
	}
	file := *c.state.Resume.File
	seq := c.issue(slotAudit)
	c.state.Resume.Loading = true
	c.mu.Unlock()

	f, err := os.Open(file.Path)
	if err != nil {
		c.mu.Lock()
		if c.latest(slotAudit, seq) {
			c.state.Resume.Loading = false
		}
		c.mu.Unlock()
		return fmt.Errorf("open resume: %w", err)
	}
	defer f.Close()

	audit, err := c.backend.ScoreResume(ctx, file.Name, f)

	c.mu.Lock()
	if !c.latest(slotAudit, seq) {
		c.mu.Unlock()
		return nil
	}
	c.state.Resume.Loading = false
	if err != nil {
		c.mu.Unlock()
		c.logger.Warn("resume scoring failed", slog.String("file", file.Name), slog.Any("error", err))
		return err
	}
	c.state.Resume.Result = audit
	c.mu.Unlock()

	// The history write may be slow; never hold the state lock across it.
	c.saveHistory(&store.Record{
		Kind:    store.KindResumeAudit,
		Company: file.Name,
		Score:   float64(audit.Score),
		Grade:   audit.Grade,
		Detail:  audit.Summary,
	})
	return nil
}
