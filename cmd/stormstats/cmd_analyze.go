package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/vytor/stormstats/internal/replay"
)

func newAnalyzeCmd(opts *rootOptions) *cobra.Command {
	var compact bool
	cmd := &cobra.Command{
		Use:   "analyze <file.StormReplay>",
		Short: "Analyze a replay and print the result as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tables, err := opts.tables()
			if err != nil {
				return err
			}

			analyzer := replay.NewAnalyzer(opts.process(), tables)
			result := analyzer.Analyze(cmd.Context(), args[0])

			enc := json.NewEncoder(cmd.OutOrStdout())
			if !compact {
				enc.SetIndent("", "  ")
			}
			if err := enc.Encode(result); err != nil {
				return err
			}
			if !result.Success {
				return errFailed
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&compact, "compact", false, "print JSON on a single line")
	return cmd
}
