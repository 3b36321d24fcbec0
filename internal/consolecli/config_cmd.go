package consolecli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/oremus-labs/exaroton-console/internal/config"
	"github.com/spf13/cobra"
)

// ConfigView is what `config view` reports.
type ConfigView struct {
	File       string `json:"file"`
	Server     string `json:"server"`
	ConsoleURL string `json:"consoleUrl"`
	Token      string `json:"token"`
}

func newConfigCmd(opts *rootOptions) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the credentials file",
	}

	viewCmd := &cobra.Command{
		Use:   "view",
		Short: "Show the resolved server and console endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			view := ConfigView{
				File:       opts.cfgFile,
				Server:     cfg.Server,
				ConsoleURL: newDialer().ConsoleURL(cfg.Server),
				Token:      maskToken(cfg.Token),
			}
			return writeConfigView(cmd.OutOrStdout(), opts.outputFormat, view)
		},
	}
	viewCmd.Flags().StringVarP(&opts.outputFormat, "output", "o", "text", "Output format: text|json")

	configCmd.AddCommand(viewCmd)
	return configCmd
}

func writeConfigView(out io.Writer, format string, view ConfigView) error {
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(view)
	case "text", "":
		fmt.Fprintf(out, "Config file: %s\n", view.File)
		fmt.Fprintf(out, "Server: %s\n", view.Server)
		fmt.Fprintf(out, "Console URL: %s\n", view.ConsoleURL)
		fmt.Fprintf(out, "Token: %s\n", view.Token)
		return nil
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}

func maskToken(token string) string {
	if len(token) <= 4 {
		return strings.Repeat("*", len(token))
	}
	return strings.Repeat("*", len(token)-4) + token[len(token)-4:]
}
