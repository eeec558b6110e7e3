// Package release coordinates one release run: version resolution, metadata
// rendering, credential gating and concurrent per-channel publishing.
package release

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/karmakrafts/modship/internal/artifact"
	"github.com/karmakrafts/modship/internal/buildinfo"
	"github.com/karmakrafts/modship/internal/changelog"
	"github.com/karmakrafts/modship/internal/credentials"
	oerrors "github.com/karmakrafts/modship/internal/errors"
	"github.com/karmakrafts/modship/internal/identity"
	"github.com/karmakrafts/modship/internal/output"
	"github.com/karmakrafts/modship/internal/publish"
	"github.com/karmakrafts/modship/internal/templates"
)

// DefaultConcurrency bounds parallel channel publishes when unset.
const DefaultConcurrency = 4

// Options configures a Coordinator.
type Options struct {
	Project     publish.Project
	BaseVersion string

	// Lookup reads the environment. Defaults to os.LookupEnv.
	Lookup credentials.LookupFunc

	// Now defaults to time.Now.
	Now func() time.Time

	// CommitFallback supplies the commit when CI_COMMIT_SHA is absent.
	CommitFallback func() (string, error)

	// Source resolves Roots. Staging receives the rendered tree.
	Source    billy.Filesystem
	Roots     []string
	Templates []string
	Staging   billy.Filesystem

	// ArtifactFS holds ArtifactPath and BundlePath.
	ArtifactFS   billy.Filesystem
	ArtifactPath string

	// BundlePath, when set, receives the artifact rewritten with a fresh
	// manifest and the staged metadata. That archive is what gets published.
	BundlePath   string
	MixinConfigs []string

	Channels    []ChannelSpec
	Timeout     time.Duration
	Concurrency int
	DryRun      bool

	// Observer is notified of every state transition.
	Observer func(State)
}

// Coordinator drives one release run through its states.
type Coordinator struct {
	opts Options
	gate *credentials.Gate

	mu    sync.Mutex
	state State
}

// New creates a Coordinator in StateInit.
func New(opts Options) *Coordinator {
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	return &Coordinator{
		opts:  opts,
		gate:  credentials.NewGate(opts.Lookup),
		state: StateInit,
	}
}

// State returns the current state.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Coordinator) transition(s State) {
	c.mu.Lock()
	prev := c.state
	c.state = s
	c.mu.Unlock()

	output.Debug("release state", "from", prev.String(), "to", s.String())
	if c.opts.Observer != nil {
		c.opts.Observer(s)
	}
}

// target is one configured channel after gating.
type target struct {
	spec     ChannelSpec
	creds    credentials.Set
	eligible bool
	missing  []string
}

// Run executes the release and always returns a report.
//
// Phase sequence:
//  1. VERSION:  derive the build identity and resolved version
//  2. RENDER:   stage resource roots and expand metadata templates
//  3. GATE:     evaluate channel credentials, load or bundle the artifact
//  4. PUBLISH:  run eligible channels concurrently, each under its timeout
//
// A failure in phases 2 or 3 is fatal: the report is failed and no channel
// is attempted. Channel failures never affect sibling channels.
func (c *Coordinator) Run(ctx context.Context) *Report {
	report := &Report{RunID: uuid.NewString(), DryRun: c.opts.DryRun}

	// Phase 1: VERSION
	id := buildinfo.FromEnv(c.opts.BaseVersion, buildinfo.Options{
		Lookup:         buildinfo.LookupFunc(c.opts.Lookup),
		Now:            c.opts.Now,
		CommitFallback: c.opts.CommitFallback,
	})
	report.Identity = id
	report.Version = id.Version()
	report.ReleaseID = identity.ReleaseID(c.opts.Project.ModID, report.Version)
	report.Changelog = changelog.ForIdentity(id)
	c.transition(StateVersionResolved)

	output.Info("resolved version", "version", report.Version, "build", id.BuildNumber)

	// Phase 2: RENDER
	rendered, err := c.render(report.Version)
	if rendered != nil {
		report.Rendered = rendered.Files
	}
	if err != nil {
		return c.abort(report, fmt.Errorf("rendering metadata: %w", err), c.gateChannels())
	}
	c.transition(StateMetadataRendered)

	// Phase 3: GATE
	targets := c.gateChannels()
	eligible := 0
	for _, t := range targets {
		if t.eligible {
			eligible++
		}
	}

	rel := &publish.Release{
		Project:   c.opts.Project,
		Identity:  id,
		Version:   report.Version,
		Changelog: report.Changelog,
	}
	if eligible > 0 && !c.opts.DryRun {
		a, err := c.prepareArtifact(id)
		if err != nil {
			return c.abort(report, err, targets)
		}
		rel.Artifact = a
		report.Artifact = a
	}

	// Phase 4: PUBLISH
	c.transition(StatePublishing)
	output.Info("publishing", "channels", len(targets), "eligible", eligible, "dryRun", c.opts.DryRun)
	report.Results = c.publish(ctx, targets, rel)

	c.transition(StateDone)
	report.finish(StateDone)
	return report
}

// abort ends the run with a fatal error. Channels that would have published
// fail with the fatal error as cause; the rest keep their skip reason.
func (c *Coordinator) abort(report *Report, err error, targets []target) *Report {
	report.setFatal(err)
	report.Results = make([]publish.Result, 0, len(targets))
	for _, t := range targets {
		switch {
		case !t.eligible:
			report.Results = append(report.Results, publish.Skipped(t.spec.Name, "missing "+strings.Join(t.missing, ", ")))
		case c.opts.DryRun:
			report.Results = append(report.Results, publish.Skipped(t.spec.Name, "dry run"))
		default:
			report.Results = append(report.Results, publish.Failed(t.spec.Name, fmt.Errorf("not attempted: %w", err)))
		}
	}
	c.transition(StateDone)
	report.finish(StateDone)
	output.Error("release aborted", "err", err)
	return report
}

func (c *Coordinator) render(version string) (*templates.Result, error) {
	p := c.opts.Project
	vars := templates.NewVariables(templates.Inputs{
		ModID:            p.ModID,
		ModName:          p.ModName,
		License:          p.License,
		Version:          version,
		Authors:          p.Authors,
		Description:      p.Description,
		MinecraftVersion: p.MinecraftVersion,
		ForgeVersion:     p.ForgeVersion,
	})

	if c.opts.Source == nil || c.opts.Staging == nil {
		return nil, errors.New("resource source and staging filesystems are required")
	}

	r := templates.NewRenderer(vars, templates.Options{
		Source:    c.opts.Source,
		Staging:   c.opts.Staging,
		Templates: c.opts.Templates,
	})
	res, err := r.Render(c.opts.Roots)
	if res != nil {
		for _, u := range res.Unmatched {
			output.Warn("template not found in any resource root", "template", u)
		}
	}
	return res, err
}

func (c *Coordinator) gateChannels() []target {
	targets := make([]target, 0, len(c.opts.Channels))
	for _, spec := range c.opts.Channels {
		t := target{spec: spec}
		t.creds, t.eligible = c.gate.Resolve(spec.Env...)
		if !t.eligible {
			t.missing = c.gate.Missing(spec)
		}
		output.Debug("channel gate", "channel", spec.Name, "eligible", t.eligible, "credentials", strings.Join(spec.Env, ","))
		targets = append(targets, t)
	}
	return targets
}

func (c *Coordinator) prepareArtifact(id buildinfo.Identity) (*artifact.Artifact, error) {
	if c.opts.ArtifactFS == nil || c.opts.ArtifactPath == "" {
		return nil, oerrors.NewNotFoundError("no artifact configured", "", "Set artifact.path in modship.yaml or pass --artifact")
	}

	if c.opts.BundlePath == "" {
		return artifact.Load(c.opts.ArtifactFS, c.opts.ArtifactPath)
	}

	if _, err := c.opts.ArtifactFS.Stat(c.opts.ArtifactPath); err != nil {
		return nil, oerrors.NewNotFoundError(
			fmt.Sprintf("artifact %s could not be opened: %v", c.opts.ArtifactPath, err),
			c.opts.ArtifactPath,
			"Run the compile step first, or pass --artifact",
		)
	}

	p := c.opts.Project
	res, err := artifact.Bundle(artifact.BundleOptions{
		FS:      c.opts.ArtifactFS,
		Input:   c.opts.ArtifactPath,
		Output:  c.opts.BundlePath,
		Staging: c.opts.Staging,
		Manifest: artifact.NewManifest(artifact.ManifestInfo{
			ModID:        p.ModID,
			Vendor:       p.Vendor,
			Version:      id.Version(),
			Timestamp:    id.Timestamp,
			MixinConfigs: c.opts.MixinConfigs,
		}),
		ModTime: id.Timestamp,
	})
	if err != nil {
		return nil, fmt.Errorf("bundling artifact: %w", err)
	}
	output.Debug("artifact bundled", "path", res.Artifact.Path, "overlaid", len(res.Overlaid), "replaced", len(res.Replaced))
	return res.Artifact, nil
}

func (c *Coordinator) publish(ctx context.Context, targets []target, rel *publish.Release) []publish.Result {
	results := make([]publish.Result, len(targets))

	var g errgroup.Group
	g.SetLimit(c.opts.Concurrency)

	for i, t := range targets {
		switch {
		case !t.eligible:
			results[i] = publish.Skipped(t.spec.Name, "missing "+strings.Join(t.missing, ", "))
			continue
		case c.opts.DryRun:
			results[i] = publish.Skipped(t.spec.Name, "dry run")
			continue
		}

		g.Go(func() error {
			ch := publish.Channel{
				Name:      t.spec.Name,
				Rejection: t.spec.Rejection,
				Publisher: publish.PublisherFunc(func(ctx context.Context, rel *publish.Release) (string, error) {
					return t.spec.New(t.creds).Publish(ctx, rel)
				}),
			}
			results[i] = publish.Invoke(ctx, ch, rel, c.opts.Timeout)
			return nil
		})
	}
	_ = g.Wait()

	for _, r := range results {
		log := output.ChannelLogger(r.Channel)
		switch r.Outcome {
		case publish.OutcomeSucceeded:
			log.Info("published", "remoteId", r.RemoteID, "took", r.Duration.Round(time.Millisecond))
		case publish.OutcomeFailed:
			log.Error("publish failed", "kind", r.Kind, "err", r.Err)
		default:
			log.Debug("skipped", "reason", r.Reason)
		}
	}
	return results
}
