// Package publish defines the channel publisher capability and the boundary
// that turns every publish attempt into a Result.
package publish

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/karmakrafts/modship/internal/artifact"
	"github.com/karmakrafts/modship/internal/buildinfo"
	oerrors "github.com/karmakrafts/modship/internal/errors"
)

// Developer is the maintainer listed in registry metadata.
type Developer struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
	URL  string `json:"url,omitempty" yaml:"url,omitempty"`
}

// Project is the static description of the released mod.
type Project struct {
	ModID            string
	ModName          string
	Description      string
	License          string
	Authors          string
	Group            string
	URL              string
	Vendor           string
	MinecraftVersion string
	ForgeVersion     string
	Developer        Developer

	// Companion is the project every marketplace release declares as its
	// single required dependency.
	Companion string
}

// ArtifactID returns the registry artifact id "<modId>-<minecraft>".
func (p Project) ArtifactID() string {
	if p.MinecraftVersion == "" {
		return p.ModID
	}
	return p.ModID + "-" + p.MinecraftVersion
}

// Release is the read-only input shared by every publisher of a run.
type Release struct {
	Project   Project
	Identity  buildinfo.Identity
	Version   string
	Changelog string
	Artifact  *artifact.Artifact
}

// Publisher uploads a release to one channel and returns the identifier
// the remote assigned to it.
type Publisher interface {
	Publish(ctx context.Context, rel *Release) (remoteID string, err error)
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(ctx context.Context, rel *Release) (string, error)

// Publish calls f.
func (f PublisherFunc) Publish(ctx context.Context, rel *Release) (string, error) {
	return f(ctx, rel)
}

// Channel binds a publisher to its channel name.
type Channel struct {
	Name string

	// Rejection is the kind reported for failures the publisher did not
	// classify itself.
	Rejection error

	Publisher Publisher
}

// Outcome is the state of one channel after a run.
type Outcome string

const (
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeSkipped   Outcome = "skipped"
	OutcomeFailed    Outcome = "failed"
)

// Result is the outcome of one configured channel.
type Result struct {
	Channel  string        `json:"channel" yaml:"channel"`
	Outcome  Outcome       `json:"outcome" yaml:"outcome"`
	Reason   string        `json:"reason,omitempty" yaml:"reason,omitempty"`
	RemoteID string        `json:"remoteId,omitempty" yaml:"remoteId,omitempty"`
	Kind     string        `json:"errorKind,omitempty" yaml:"errorKind,omitempty"`
	Error    string        `json:"error,omitempty" yaml:"error,omitempty"`
	Duration time.Duration `json:"-" yaml:"-"`

	// Err is the failure cause. It is nil unless Outcome is failed.
	Err error `json:"-" yaml:"-"`
}

// Skipped returns a skipped result with a reason.
func Skipped(channel, reason string) Result {
	return Result{Channel: channel, Outcome: OutcomeSkipped, Reason: reason}
}

// Succeeded returns a successful result.
func Succeeded(channel, remoteID string) Result {
	return Result{Channel: channel, Outcome: OutcomeSucceeded, RemoteID: remoteID}
}

// Failed returns a failed result for err.
func Failed(channel string, err error) Result {
	return Result{
		Channel: channel,
		Outcome: OutcomeFailed,
		Kind:    oerrors.Kind(err),
		Error:   err.Error(),
		Err:     err,
	}
}

// IsFailed reports whether the result is a failure.
func (r Result) IsFailed() bool {
	return r.Outcome == OutcomeFailed
}

// Invoke runs one channel's publisher under timeout and converts whatever
// happens into a Result: a deadline becomes Timeout, a panic or an
// unclassified error becomes the channel's rejection kind. Invoke never
// returns an error and never panics.
func Invoke(ctx context.Context, ch Channel, rel *Release, timeout time.Duration) (res Result) {
	start := time.Now()

	pctx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		pctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			res = Failed(ch.Name, oerrors.NewChannelError(ch.Name, rejection(ch), fmt.Errorf("publisher panicked: %v", r)))
		}
		res.Duration = time.Since(start)
	}()

	id, err := ch.Publisher.Publish(pctx, rel)
	if err == nil {
		return Succeeded(ch.Name, id)
	}
	return Failed(ch.Name, classify(pctx, ch, err))
}

func classify(ctx context.Context, ch Channel, err error) error {
	if errors.Is(err, oerrors.ErrTimeout) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return oerrors.NewChannelError(ch.Name, oerrors.ErrTimeout, err)
	}

	var ce *oerrors.ChannelError
	if errors.As(err, &ce) {
		return err
	}
	return oerrors.NewChannelError(ch.Name, rejection(ch), err)
}

func rejection(ch Channel) error {
	if ch.Rejection != nil {
		return ch.Rejection
	}
	return oerrors.ErrUploadRejected
}
