// Package initcmder provides the init command for initializing a local .rsum
// directory in the current working directory.
package initcmder

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/rsum/pkg/cliui"
	"github.com/papercomputeco/rsum/pkg/config"
	"github.com/papercomputeco/rsum/pkg/dotdir"
)

const initLongDesc string = `Initialize a new .rsum/ directory in the current working directory.

Creates a local .rsum/ directory with a config.toml that takes precedence over
the default ~/.rsum/ directory. An existing config.toml is kept unless a
preset is given.

Presets:
  ollama    Local Ollama endpoint (the default)
  openai    OpenAI chat completions API
  <url>     Fetch a config.toml from an http(s) URL

Examples:
  rsum init
  rsum init --preset openai
  rsum init --preset https://example.com/rsum/config.toml`

const initShortDesc string = "Initialize a local .rsum/ directory"

const remoteFetchTimeout = 30 * time.Second

type initCommander struct {
	preset string
}

func NewInitCmd() *cobra.Command {
	cmder := &initCommander{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: initShortDesc,
		Long:  initLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd.Context(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&cmder.preset, "preset", "", "Provider preset name or URL of a config.toml")

	return cmd
}

func (c *initCommander) run(ctx context.Context, w io.Writer) error {
	dir, existed, err := dotdir.NewManager().InitLocal()
	if err != nil {
		return err
	}

	if existed {
		fmt.Fprintf(w, "Already initialized: %s\n", dir)
	} else {
		fmt.Fprintf(w, "Initialized .rsum directory: %s\n", dir)
	}

	configPath := filepath.Join(dir, "config.toml")
	if c.preset == "" {
		if _, err := os.Stat(configPath); err == nil {
			return nil
		}
	}

	cfg, err := c.resolve(ctx)
	if err != nil {
		return err
	}

	cfger, err := config.NewConfiger(dir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfger.SaveConfig(cfg); err != nil {
		return err
	}

	fmt.Fprintf(w, "  %s Wrote %s\n", cliui.SuccessMark, cliui.DimStyle.Render(configPath))
	return nil
}

// resolve builds the config to write from the preset flag.
func (c *initCommander) resolve(ctx context.Context) (*config.Config, error) {
	switch {
	case c.preset == "":
		return config.NewDefaultConfig(), nil
	case strings.HasPrefix(c.preset, "http://"), strings.HasPrefix(c.preset, "https://"):
		return fetchRemoteConfig(ctx, c.preset)
	default:
		return config.PresetConfig(c.preset)
	}
}

func fetchRemoteConfig(ctx context.Context, url string) (*config.Config, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, remoteFetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("fetching remote config: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching remote config: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching remote config: HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading remote config: %w", err)
	}

	return config.ParseConfigTOML(data)
}
