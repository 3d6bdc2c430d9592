package main

import (
	"encoding/json"
	"fmt"

	"github.com/ednfs/ednfs-cli/internal/cli"
	"github.com/ednfs/ednfs-cli/internal/edncodec"
	"github.com/ednfs/ednfs-cli/internal/errors"
	"github.com/ednfs/ednfs-cli/internal/fs"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
)

var (
	ExportFormat string

	exportCmd = &cobra.Command{
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := cli.NewService(cli.Config{FileSystem: fs.Local{}})
			if err != nil {
				return err
			}

			if err := svc.Load(args[0]); err != nil {
				return err
			}

			var output []byte
			switch ExportFormat {
			case "edn":
				output, err = edncodec.Encode(svc.Root())
			case "yaml":
				output, err = yaml.Marshal(edncodec.ToPlain(svc.Root()))
			case "json":
				output, err = json.MarshalIndent(edncodec.ToPlain(svc.Root()), "", "  ")
				output = append(output, '\n')
			default:
				return errors.Errorf("unknown format %q; expected edn, yaml, or json", ExportFormat)
			}
			if err != nil {
				return err
			}

			fmt.Print(string(output))
			return nil
		},
		Short: "Print a tree file in another format",
		Use:   "export [flags] <file>",
	}
)

func init() {
	exportCmd.Flags().StringVar(&ExportFormat, "format", "edn", "output format: edn, yaml, or json")
}
