package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	httpcmd "github.com/Alijeyrad/drivingschool_backend/cmd/http"
	systemcmd "github.com/Alijeyrad/drivingschool_backend/cmd/system"
)

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "drivingschool",
		Short: "Driving school backend: lesson plans, credits and instructor bookings",
		Long: `drivingschool serves the JSON API of a driving school. Students buy lesson
plans, receive lesson credits and book one-hour lessons with instructors.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().String("config", "config.yaml", "path to the config file; its directory is searched for config.yaml and .env")

	root.AddCommand(
		httpcmd.NewHTTPCommand(),
		systemcmd.NewSystemCommand(),
	)
	return root
}

func Execute() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
