package consolecli

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/oremus-labs/exaroton-console/internal/api"
	"github.com/oremus-labs/exaroton-console/internal/config"
	"github.com/oremus-labs/exaroton-console/internal/console"
	"github.com/oremus-labs/exaroton-console/internal/events"
	"github.com/oremus-labs/exaroton-console/internal/exaroton"
	"github.com/oremus-labs/exaroton-console/internal/logutil"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	cfgFile      string
	metricsAddr  string
	redisAddr    string
	redisChannel string
	outputFormat string
	verbose      bool
}

// newDialer is swapped in tests.
var newDialer = exaroton.NewDialer

// Execute runs the CLI.
func Execute() error {
	cmd := newRootCmd()
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		printErrorLine("Error: %v", err)
		return err
	}
	return nil
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "exaroton-console",
		Short: "Attach to the console of an exaroton server",
		Long: `exaroton-console streams the live console of an exaroton server to stdout
and sends every line typed on stdin as a console command.
Credentials are read from a config file with "token" and "server" keys.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logutil.SetVerbose(opts.verbose)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConsole(cmd, opts)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.cfgFile, "config", config.DefaultPath, "Path to the credentials file (TOML or YAML)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Log skipped frames and other debug details to stderr")
	cmd.Flags().StringVar(&opts.metricsAddr, "metrics-addr", "", "Serve /metrics and /healthz on this address (disabled when empty)")
	cmd.Flags().StringVar(&opts.redisAddr, "redis-addr", "", "Mirror console lines to Redis at this address or redis:// URL")
	cmd.Flags().StringVar(&opts.redisChannel, "redis-channel", events.DefaultChannel, "Redis channel for mirrored console lines")

	cmd.AddCommand(newConfigCmd(opts))
	return cmd
}

func runConsole(cmd *cobra.Command, opts *rootOptions) error {
	cfg, err := config.Load(opts.cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	ctx := cmd.Context()
	sessionID := uuid.NewString()
	fields := map[string]interface{}{"server": cfg.Server, "session": sessionID}

	if opts.metricsAddr != "" {
		srv := api.NewServer(api.Options{Server: cfg.Server, Session: sessionID}).Start(opts.metricsAddr)
		defer srv.Close()
		logutil.Info("metrics listener started", map[string]interface{}{"addr": opts.metricsAddr})
	}

	redisClient, err := events.Connect(ctx, opts.redisAddr)
	if err != nil {
		return err
	}
	bus := events.NewBus(events.Options{
		Client:  redisClient,
		Channel: opts.redisChannel,
		Server:  cfg.Server,
		Session: sessionID,
	})
	defer bus.Close()

	conn, err := newDialer().Dial(ctx, cfg)
	if err != nil {
		return err
	}
	defer conn.Close()
	logutil.Debug("console connected", fields)

	var publisher console.LinePublisher
	if redisClient != nil {
		publisher = bus
	}
	session := console.NewSession(console.Options{
		ID:        sessionID,
		Conn:      conn,
		Input:     cmd.InOrStdin(),
		Output:    cmd.OutOrStdout(),
		Publisher: publisher,
	})
	return session.Run(ctx)
}

func printErrorLine(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}
