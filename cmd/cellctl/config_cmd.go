package main

import (
	"fmt"

	"github.com/danmuck/cqlcell/internal/config"
	"github.com/danmuck/cqlcell/internal/deserialize"
	"github.com/danmuck/cqlcell/internal/protocol/cqltype"
	"github.com/spf13/cobra"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect cellctl configuration",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "default",
			Short: "Print the default config as TOML",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return config.Encode(cmd.OutOrStdout(), config.Default())
			},
		},
		&cobra.Command{
			Use:   "show",
			Short: "Print the effective config as TOML",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return config.Encode(cmd.OutOrStdout(), a.cfg)
			},
		},
		&cobra.Command{
			Use:   "validate <path>",
			Short: "Validate a config file",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if _, err := config.Load(args[0]); err != nil {
					return err
				}
				a.logger.Info().Str("path", args[0]).Msg("config valid")
				fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", args[0])
				return nil
			},
		},
	)
	return cmd
}

// newTypesCmd lists the native CQL types and the Go type each decodes to
// under the effective bindings.
func newTypesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List native CQL types and their Go bindings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := deserialize.NewRegistry(a.cfg.RegistryOptions(nil))
			if err != nil {
				return err
			}
			for _, typ := range cqltype.Natives() {
				fmt.Fprintf(cmd.OutOrStdout(), "%-10s %s\n", typ, reg.Lookup(typ).GoType())
			}
			return nil
		},
	}
}
