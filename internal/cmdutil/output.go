package cmdutil

import (
	"errors"
	"fmt"
	"io"
	"strings"

	oerrors "github.com/karmakrafts/modship/internal/errors"
	"github.com/karmakrafts/modship/internal/output"
	"github.com/karmakrafts/modship/internal/publish"
	"github.com/karmakrafts/modship/internal/release"
)

// Flatten expands joined errors into their leaves. Wrapping layers above a
// joined error are dropped; a ChannelError is kept whole.
func Flatten(err error) []error {
	if err == nil {
		return nil
	}
	for e := err; e != nil; e = errors.Unwrap(e) {
		if _, ok := e.(*oerrors.ChannelError); ok {
			break
		}
		if joined, ok := e.(interface{ Unwrap() []error }); ok {
			var out []error
			for _, inner := range joined.Unwrap() {
				out = append(out, Flatten(inner)...)
			}
			return out
		}
	}
	return []error{err}
}

// PrintRenderErrors prints metadata render failures one per line.
func PrintRenderErrors(err error) {
	output.Error("metadata render failed")
	for _, e := range Flatten(err) {
		var missing *oerrors.MissingVariableError
		if errors.As(e, &missing) {
			output.Error(fmt.Sprintf("%s: unknown variable ${%s}", missing.File, missing.Variable))
			continue
		}
		output.Error(e.Error())
	}
}

// ResultDetail returns the table detail cell for a channel result.
func ResultDetail(r publish.Result) string {
	switch r.Outcome {
	case publish.OutcomeSucceeded:
		return r.RemoteID
	case publish.OutcomeFailed:
		if r.Kind != "" {
			return r.Kind + ": " + r.Error
		}
		return r.Error
	default:
		return r.Reason
	}
}

// WriteReport writes a release report in the requested format.
func WriteReport(w io.Writer, format output.Format, r *release.Report) error {
	if format != output.FormatTable {
		return output.WriteStructured(w, format, r)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", output.StyleSummary.Render("Release"), output.FormatVersion(r.Version))
	if r.Changelog != "" {
		fmt.Fprintf(&b, "%s\n", output.StyleDim.Render(r.Changelog))
	}
	if r.Artifact != nil {
		fmt.Fprintf(&b, "%s %s (%d bytes, %s)\n",
			output.StyleDim.Render("artifact"), r.Artifact.Path, r.Artifact.Size, r.Artifact.Digests.String())
	}
	if r.FatalError != "" {
		fmt.Fprintf(&b, "%s\n", output.FormatCross(r.FatalError))
	}

	if len(r.Results) > 0 {
		tbl := output.NewTable("CHANNEL", "STATUS", "DETAIL").StatusColumn(1)
		for _, res := range r.Results {
			tbl.Row(res.Channel, string(res.Outcome), ResultDetail(res))
		}
		fmt.Fprintln(&b, tbl.String())
	}

	summary := fmt.Sprintf("%d succeeded, %d skipped, %d failed",
		r.Count(publish.OutcomeSucceeded), r.Count(publish.OutcomeSkipped), r.Count(publish.OutcomeFailed))
	if r.Failed() {
		fmt.Fprintln(&b, output.FormatCross(summary))
	} else {
		fmt.Fprintln(&b, output.FormatCheckmark(summary))
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// ReportExitError maps a finished report to the command's return value.
// The report is assumed to have been printed already.
func ReportExitError(r *release.Report) error {
	if !r.Failed() {
		return nil
	}
	code := oerrors.ExitPublishFailed
	if fatal := r.Fatal(); fatal != nil {
		code = oerrors.ExitCodeFromError(fatal)
	}
	return &oerrors.ExitError{Err: r.Err(), Code: code, Printed: true}
}
