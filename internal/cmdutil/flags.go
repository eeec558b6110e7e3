// Package cmdutil provides shared command utilities for the release, render
// and channels commands. It centralizes flag groups, coordinator option
// assembly and report output helpers.
package cmdutil

import (
	"time"

	"github.com/spf13/cobra"
)

// ReleaseFlags holds flags common to commands that run the coordinator
// (release, render).
type ReleaseFlags struct {
	Artifact    string
	DryRun      bool
	Timeout     time.Duration
	Concurrency int
}

// AddTo registers the release flags on the given cobra command.
func (f *ReleaseFlags) AddTo(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.Artifact, "artifact", "",
		"Path to the compiled jar (default: artifact.path from config)")
	cmd.Flags().BoolVar(&f.DryRun, "dry-run", false,
		"Resolve, render and gate channels without uploading")
	cmd.Flags().DurationVar(&f.Timeout, "timeout", 0,
		"Per-channel publish timeout (env: MODSHIP_TIMEOUT)")
	cmd.Flags().IntVar(&f.Concurrency, "concurrency", 0,
		"Channels published at once (default: publish.concurrency from config)")
}
