package main

import (
	"github.com/danmuck/cqlcell/internal/config"
	"github.com/danmuck/cqlcell/internal/observability"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// app carries the resolved config and logger from the root command to its
// subcommands.
type app struct {
	configPath string
	cfg        config.Config
	logger     zerolog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{cfg: config.Default(), logger: zerolog.Nop()}

	root := &cobra.Command{
		Use:   "cellctl",
		Short: "Decode CQL result cells into typed values",
		Long: `cellctl decodes length-prefixed CQL cells against a list of column
types, using the same typed bindings a driver would use.

Example:
  cellctl decode --types "id:int; name:text; tags:list<text>" rows.bin`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if a.configPath != "" {
				cfg, err := config.Load(a.configPath)
				if err != nil {
					return err
				}
				a.cfg = cfg
			}
			lc := a.cfg.LoggerConfig()
			lc.Out = cmd.ErrOrStderr()
			a.logger = observability.InitLogger("cellctl", lc)
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "path to a cellctl TOML config")

	root.AddCommand(newDecodeCmd(a), newConfigCmd(a), newTypesCmd(a))
	return root
}
