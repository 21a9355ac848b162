package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLocaleCmd(opts *rootOptions) *cobra.Command {
	var isMap bool
	cmd := &cobra.Command{
		Use:   "locale <name>",
		Short: "Print the display name for a hero or map",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tables, err := opts.tables()
			if err != nil {
				return err
			}
			name := tables.Hero(args[0])
			if isMap {
				name = tables.Map(args[0])
			}
			fmt.Fprintln(cmd.OutOrStdout(), name)
			return nil
		},
	}
	cmd.Flags().BoolVar(&isMap, "map", false, "look up a map instead of a hero")
	return cmd
}
