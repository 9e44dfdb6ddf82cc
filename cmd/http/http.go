// Package http holds the cobra commands that run the JSON API.
package http

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/Alijeyrad/drivingschool_backend/config"
	httpapi "github.com/Alijeyrad/drivingschool_backend/internal/api/http"
)

func NewHTTPCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "http",
		Short: "Run the driving school API",
	}
	cmd.AddCommand(newStartCommand())
	return cmd
}

type startFlags struct {
	shutdownTimeout time.Duration
	port            int
	environment     string
}

func newStartCommand() *cobra.Command {
	var f startFlags

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Serve bookings, purchases and portals over HTTP",
		Example: `  drivingschool http start --config ./config.yaml
  drivingschool http start --port 9090 --env development`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfgPath, err := cmd.Root().PersistentFlags().GetString("config")
			if err != nil {
				return err
			}
			cfg, err := config.ReadConfig(filepath.Dir(cfgPath))
			if err != nil {
				return fmt.Errorf("read config: %w", err)
			}
			f.apply(cfg)

			httpapi.Start(cfg, f.shutdownTimeout)
			return nil
		},
	}

	cmd.Flags().DurationVar(&f.shutdownTimeout, "shutdown-timeout", 30*time.Second, "how long in-flight requests get to finish on shutdown")
	cmd.Flags().IntVar(&f.port, "port", 0, "override server.port")
	cmd.Flags().StringVar(&f.environment, "env", "", "override server.environment (development|production)")

	return cmd
}

// apply lays command-line overrides over the file config.
func (f startFlags) apply(cfg *config.Config) {
	if f.port > 0 {
		cfg.Server.Port = f.port
	}
	if f.environment != "" {
		cfg.Server.Environment = f.environment
	}
}
