package config

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"github.com/Masterminds/semver/v3"
)

//go:embed schema.cue
var schemaCUE []byte

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

// Error implements the error interface.
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}

	var sb strings.Builder
	sb.WriteString("config validation failed:\n")
	for _, err := range e {
		sb.WriteString(fmt.Sprintf("  %s: %s\n", err.Field, err.Message))
	}
	return sb.String()
}

// Validator validates configuration against the embedded CUE schema.
type Validator struct {
	ctx    *cue.Context
	schema cue.Value
}

// NewValidator creates a new configuration validator.
func NewValidator() (*Validator, error) {
	ctx := cuecontext.New()

	root := ctx.CompileBytes(schemaCUE, cue.Filename("schema.cue"))
	if root.Err() != nil {
		return nil, fmt.Errorf("compiling schema: %w", root.Err())
	}

	schema := root.LookupPath(cue.ParsePath("#Config"))
	if !schema.Exists() {
		return nil, fmt.Errorf("schema has no #Config definition")
	}

	return &Validator{
		ctx:    ctx,
		schema: schema,
	}, nil
}

// Validate checks cfg against the schema and the rules the schema cannot
// express. It returns ValidationErrors sorted by field.
func (v *Validator) Validate(cfg *Config) error {
	var errs ValidationErrors

	data := v.ctx.Encode(cfg)
	if data.Err() != nil {
		return fmt.Errorf("encoding config: %w", data.Err())
	}

	unified := v.schema.Unify(data)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		errs = append(errs, fromCUE(err)...)
	}

	errs = append(errs, checkChannels(cfg)...)

	if len(errs) == 0 {
		return nil
	}
	sort.SliceStable(errs, func(i, j int) bool { return errs[i].Field < errs[j].Field })
	return dedupe(errs)
}

// fromCUE flattens a CUE error into field-addressed validation errors.
func fromCUE(err error) ValidationErrors {
	var out ValidationErrors
	for _, e := range cueerrors.Errors(err) {
		format, args := e.Msg()
		msg := fmt.Sprintf(format, args...)
		if strings.HasPrefix(msg, "incomplete value") {
			msg = "is required"
		}
		out = append(out, ValidationError{
			Field:   strings.Join(e.Path(), "."),
			Message: msg,
		})
	}
	return out
}

func checkChannels(cfg *Config) ValidationErrors {
	var errs ValidationErrors
	seen := make(map[string]bool, len(cfg.Channels.Order))
	for _, name := range cfg.Channels.Order {
		if seen[name] {
			errs = append(errs, ValidationError{
				Field:   "channels.order",
				Message: fmt.Sprintf("channel %q listed more than once", name),
			})
		}
		seen[name] = true
	}

	if seen[ChannelCurseForge] && cfg.Channels.CurseForge.ProjectID == 0 {
		errs = append(errs, ValidationError{
			Field:   "channels.curseforge.projectId",
			Message: "is required when curseforge is configured",
		})
	}
	if seen[ChannelGitLab] && cfg.Project.Group == "" {
		errs = append(errs, ValidationError{
			Field:   "project.group",
			Message: "is required when gitlab is configured",
		})
	}
	if seen[ChannelGitLab] {
		if cfg.Maintainer.ID == "" {
			errs = append(errs, ValidationError{
				Field:   "maintainer.id",
				Message: "is required when gitlab is configured",
			})
		}
		if cfg.Maintainer.Name == "" {
			errs = append(errs, ValidationError{
				Field:   "maintainer.name",
				Message: "is required when gitlab is configured",
			})
		}
	}
	return errs
}

func dedupe(errs ValidationErrors) ValidationErrors {
	out := errs[:0]
	for i, e := range errs {
		if i > 0 && e == errs[i-1] {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Lint returns non-fatal warnings about version fields.
func Lint(cfg *Config) []string {
	var warnings []string

	if cfg.Project.BaseVersion != "" {
		if _, err := semver.StrictNewVersion(cfg.Project.BaseVersion); err != nil {
			warnings = append(warnings, fmt.Sprintf(
				"project.baseVersion %q is not MAJOR.MINOR.PATCH; the build number is appended as is",
				cfg.Project.BaseVersion))
		}
	}
	if cfg.Platform.Minecraft != "" {
		if _, err := semver.NewVersion(cfg.Platform.Minecraft); err != nil {
			warnings = append(warnings, fmt.Sprintf("platform.minecraft %q is not a version", cfg.Platform.Minecraft))
		}
	}
	if cfg.Platform.Forge != "" {
		if v, err := semver.NewVersion(cfg.Platform.Forge); err != nil {
			warnings = append(warnings, fmt.Sprintf("platform.forge %q is not a version", cfg.Platform.Forge))
		} else if v.Major() == 0 {
			warnings = append(warnings, fmt.Sprintf("platform.forge %q has major version 0; loader_version_range will be \"0\"", cfg.Platform.Forge))
		}
	}
	return warnings
}
