package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/AgentOS/navigator/internal/infrastructure/config"
	"github.com/GriffinCanCode/AgentOS/navigator/internal/infrastructure/server"
)

// Version information set at build time.
var version = "dev"

func main() {
	var (
		configPath string
		host       string
		port       string
		dev        bool
		initialURL string
	)

	rootCmd := &cobra.Command{
		Use:           "navigator",
		Short:         "Headless browsing contexts over HTTP",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadFile(configPath)
			if err != nil {
				return err
			}
			// Flags override file and environment
			flags := cmd.Flags()
			if flags.Changed("host") {
				cfg.Server.Host = host
			}
			if flags.Changed("port") {
				cfg.Server.Port = port
			}
			if flags.Changed("dev") {
				cfg.Logging.Development = dev
			}
			if flags.Changed("initial-url") {
				cfg.Browser.InitialURL = initialURL
			}
			return run(cmd.Context(), cfg)
		},
	}

	flags := rootCmd.Flags()
	flags.StringVarP(&configPath, "config", "c", "", "YAML or TOML configuration file")
	flags.StringVar(&host, "host", "", "Listen host")
	flags.StringVarP(&port, "port", "p", "", "Listen port")
	flags.BoolVar(&dev, "dev", false, "Development logging")
	flags.StringVar(&initialURL, "initial-url", "", "URL new windows open at")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	srv, err := server.NewServer(cfg)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	defer srv.Close()

	return srv.Run(ctx)
}
