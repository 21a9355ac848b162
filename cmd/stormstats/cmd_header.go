package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newHeaderCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "header <file.StormReplay>",
		Short: "Print the build and version stored in a replay header",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			header, err := opts.process().DecodeHeader(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("read header: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "build:   %d\n", header.Build)
			fmt.Fprintf(out, "version: %s\n", header.Version)
			fmt.Fprintf(out, "loops:   %d\n", header.ElapsedGameLoops)
			return nil
		},
	}
}
