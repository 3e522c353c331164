package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/df07/go-shadowcaster/pkg/config"
	"github.com/df07/go-shadowcaster/pkg/logging"
	"github.com/df07/go-shadowcaster/web/server"
)

func main() {
	var port int
	var configFile, envFile string

	cmd := &cobra.Command{
		Use:          "shadowcaster-web",
		Short:        "Serve renders over HTTP",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadDotEnv(envFile); err != nil {
				return err
			}
			cfg, err := config.Load(config.New(), configFile)
			if err != nil {
				return err
			}
			log, err := logging.New(cmd.ErrOrStderr(), cfg.LogLevel, true)
			if err != nil {
				return err
			}

			webServer := server.NewServer(cfg, log)
			log.Info().Msgf("Visit http://localhost:%d/api/render?scene=eclipse to render", port)
			return webServer.Start(port)
		},
	}
	cmd.Flags().IntVar(&port, "port", 8080, "Port to serve on")
	cmd.Flags().StringVar(&configFile, "config", "", "Config file (YAML)")
	cmd.Flags().StringVar(&envFile, "env-file", ".env", "Environment file loaded before the config")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
