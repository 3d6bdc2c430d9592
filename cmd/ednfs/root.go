package main

import (
	"github.com/ednfs/ednfs-cli/cmd/ednfs/config"
	"github.com/ednfs/ednfs-cli/internal/cli"
	"github.com/ednfs/ednfs-cli/internal/fs"

	"github.com/spf13/cobra"
)

var (
	Debug bool

	service *cli.Service

	rootCmd = &cobra.Command{
		Use:           "ednfs [file]",
		Short:         "An interactive in-memory filesystem over a single EDN file",
		Args:          cobra.MaximumNArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		Version:       config.Version,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			service, err = cli.NewService(cli.Config{FileSystem: fs.Local{}})
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			filename := ""
			if len(args) == 1 {
				filename = args[0]
			}

			return runShell(service, filename)
		},
	}
)

func init() {
	rootCmd.PersistentFlags().BoolVar(&Debug, "debug", false, "enable debug output")
	_ = rootCmd.PersistentFlags().MarkHidden("debug")

	rootCmd.AddCommand(exportCmd)
}
