// Package rsumcmder is the root rsum command.
package rsumcmder

import (
	"github.com/spf13/cobra"

	configcmder "github.com/papercomputeco/rsum/cmd/rsum/config"
	initcmder "github.com/papercomputeco/rsum/cmd/rsum/init"
	runcmder "github.com/papercomputeco/rsum/cmd/rsum/run"
	servecmder "github.com/papercomputeco/rsum/cmd/rsum/serve"
	versioncmder "github.com/papercomputeco/rsum/cmd/version"
)

const rsumLongDesc string = `rsum reconstructs long-term conversational memory.

It summarizes past dialogue sessions into a running memory, verifies the
facts each session adds against that session, and answers the current
context from the final memory.

Get started:
  rsum init                  Create a local .rsum/ config directory
  rsum run dataset.json      Run the pipeline over a dataset
  rsum serve                 Run the HTTP API and MCP endpoint
  rsum config list           Show the resolved configuration`

const rsumShortDesc string = "rsum - verified memory reconstruction"

func NewRsumCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "rsum",
		Short:        rsumShortDesc,
		Long:         rsumLongDesc,
		SilenceUsage: true,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override path to the .rsum/ config directory")

	// Add subcommands
	cmd.AddCommand(runcmder.NewRunCmd())
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(initcmder.NewInitCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
