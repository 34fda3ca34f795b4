package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newStepsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "steps",
		Short: "List the pipeline steps in execution order",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			pipeline, err := loadPipeline(opts)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "#\tNAME\tTYPE\tENABLED\tON FAILURE")
			for i, s := range pipeline.Steps {
				fmt.Fprintf(w, "%d\t%s\t%s\t%t\t%s\n", i+1, s.Name, s.Type, s.IsEnabled(), s.Policy())
			}
			return w.Flush()
		},
	}
}
