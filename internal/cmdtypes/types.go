// Package cmdtypes provides shared types for the cmd package and its helpers.
// It is separate from internal/cmd to avoid import cycles between internal/cmd
// and internal/cmdutil.
package cmdtypes

import (
	"github.com/karmakrafts/modship/internal/config"
	oerrors "github.com/karmakrafts/modship/internal/errors"
	"github.com/karmakrafts/modship/internal/output"
)

// GlobalConfig holds CLI-wide configuration resolved during PersistentPreRunE.
// It is populated once at startup and passed explicitly into every sub-command
// constructor.
type GlobalConfig struct {
	Config *config.Config

	// ConfigPath is the resolved --config path.
	ConfigPath string

	// ConfigFound is false when ConfigPath does not exist and defaults apply.
	ConfigFound bool

	// ProjectDir is the directory relative paths in Config resolve against.
	ProjectDir string

	OutputFormat output.Format
	Verbose      bool
}

// Exit codes, aliased from internal/errors.
const (
	ExitSuccess         = oerrors.ExitSuccess
	ExitGeneralError    = oerrors.ExitGeneralError
	ExitValidationError = oerrors.ExitValidationError
	ExitPublishFailed   = oerrors.ExitPublishFailed
	ExitNotFound        = oerrors.ExitNotFound
)

// ExitError is a type alias to internal/errors.ExitError.
type ExitError = oerrors.ExitError
