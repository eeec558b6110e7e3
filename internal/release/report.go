package release

import (
	"errors"

	"github.com/karmakrafts/modship/internal/artifact"
	"github.com/karmakrafts/modship/internal/buildinfo"
	"github.com/karmakrafts/modship/internal/publish"
	"github.com/karmakrafts/modship/internal/templates"
)

// Status is the overall outcome of a run.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Report is the result of one release run. Results hold exactly one entry
// per configured channel, in configured order.
type Report struct {
	RunID     string             `json:"runId" yaml:"runId"`
	ReleaseID string             `json:"releaseId" yaml:"releaseId"`
	Version   string             `json:"version" yaml:"version"`
	Identity  buildinfo.Identity `json:"identity" yaml:"identity"`
	Changelog string             `json:"changelog" yaml:"changelog"`
	DryRun    bool               `json:"dryRun,omitempty" yaml:"dryRun,omitempty"`
	Status    Status             `json:"status" yaml:"status"`
	State     string             `json:"state" yaml:"state"`

	Rendered []templates.RenderedFile `json:"rendered,omitempty" yaml:"rendered,omitempty"`
	Artifact *artifact.Artifact       `json:"artifact,omitempty" yaml:"artifact,omitempty"`

	// FatalError describes the failure that stopped the run before publishing.
	FatalError string `json:"fatalError,omitempty" yaml:"fatalError,omitempty"`

	Results []publish.Result `json:"results" yaml:"results"`

	fatal error
}

// Failed reports whether the run failed: a fatal error occurred or at least
// one eligible channel failed. Skipped channels never fail a run.
func (r *Report) Failed() bool {
	if r.fatal != nil {
		return true
	}
	for _, res := range r.Results {
		if res.IsFailed() {
			return true
		}
	}
	return false
}

// Fatal returns the error that stopped the run before publishing, if any.
func (r *Report) Fatal() error {
	return r.fatal
}

// Err returns the fatal error, or all channel failures joined, or nil.
func (r *Report) Err() error {
	if r.fatal != nil {
		return r.fatal
	}
	var errs []error
	for _, res := range r.Results {
		if res.IsFailed() {
			errs = append(errs, res.Err)
		}
	}
	return errors.Join(errs...)
}

// Count returns how many results have the given outcome.
func (r *Report) Count(o publish.Outcome) int {
	n := 0
	for _, res := range r.Results {
		if res.Outcome == o {
			n++
		}
	}
	return n
}

func (r *Report) finish(state State) {
	r.State = state.String()
	r.Status = StatusSucceeded
	if r.Failed() {
		r.Status = StatusFailed
	}
}

func (r *Report) setFatal(err error) {
	r.fatal = err
	r.FatalError = err.Error()
}
