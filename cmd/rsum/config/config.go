// Package configcmder provides the config command for managing persistent
// rsum configuration stored in the .rsum/ directory.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent rsum configuration.

Configuration is stored as config.toml in the .rsum/ directory and provides
default values for command flags. CLI flags and RSUM_* environment variables
take precedence over config file values.

Keys use dotted notation matching the TOML section structure:
  model.provider, model.target, model.name, model.api_key,
  model.temperature, model.seed, model.num_ctx, model.stream, model.timeout,
  pipeline.variant, pipeline.draft_style, pipeline.strict,
  pipeline.verify_concurrency, pipeline.noise_threshold,
  dataset.files, log.dir, log.json,
  api.listen, api.workers, api.queue_size,
  eventstream.provider, eventstream.brokers, eventstream.topic

Use subcommands to get, set, or list configuration values:
  rsum config set <key> <value>    Set a configuration value
  rsum config get <key>            Get a configuration value
  rsum config list                 List all configuration values

Examples:
  rsum config set model.name llama3.1:8b
  rsum config set pipeline.variant rsum
  rsum config get model.target
  rsum config list`

const configShortDesc string = "Manage persistent rsum configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}

// configDir reads the persistent --config-dir flag when the root command
// defines it.
func configDir(cmd *cobra.Command) string {
	dir, _ := cmd.Flags().GetString("config-dir")
	return dir
}
