package cmd

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/karmakrafts/modship/internal/cmdtypes"
	"github.com/karmakrafts/modship/internal/cmdutil"
	"github.com/karmakrafts/modship/internal/credentials"
	"github.com/karmakrafts/modship/internal/output"
)

// ChannelStatus is the eligibility of one configured channel.
// It never carries credential values.
type ChannelStatus struct {
	Channel     string   `json:"channel" yaml:"channel"`
	Eligible    bool     `json:"eligible" yaml:"eligible"`
	Credentials []string `json:"credentials" yaml:"credentials"`
	Missing     []string `json:"missing,omitempty" yaml:"missing,omitempty"`
}

// NewChannelsCmd creates the channels command.
func NewChannelsCmd(cfg *cmdtypes.GlobalConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "channels",
		Short: "Show which configured channels would publish",
		Long: `List every configured channel with the credential variables it needs and
whether they are present in the environment. Values are never printed.`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			statuses, err := channelStatuses(cfg, nil)
			if err != nil {
				return err
			}

			if cfg.OutputFormat != output.FormatTable {
				return output.WriteStructured(c.OutOrStdout(), cfg.OutputFormat, statuses)
			}

			tbl := output.NewTable("CHANNEL", "STATUS", "CREDENTIALS", "MISSING").StatusColumn(1)
			eligible := 0
			for _, s := range statuses {
				status := output.StatusSkipped
				if s.Eligible {
					status = output.StatusEligible
					eligible++
				}
				tbl.Row(s.Channel, status, strings.Join(s.Credentials, ", "), strings.Join(s.Missing, ", "))
			}

			_, err = fmt.Fprintf(c.OutOrStdout(), "%s\n%d of %d channels eligible\n", tbl.String(), eligible, len(statuses))
			return err
		},
	}
}

func channelStatuses(cfg *cmdtypes.GlobalConfig, lookup credentials.LookupFunc) ([]ChannelStatus, error) {
	specs, err := cmdutil.Channels(cfg.Config, http.DefaultClient)
	if err != nil {
		return nil, err
	}

	gate := credentials.NewGate(lookup)
	statuses := make([]ChannelStatus, 0, len(specs))
	for _, spec := range specs {
		statuses = append(statuses, ChannelStatus{
			Channel:     spec.Name,
			Eligible:    gate.IsEligible(spec),
			Credentials: spec.RequiredEnv(),
			Missing:     gate.Missing(spec),
		})
	}
	return statuses, nil
}
