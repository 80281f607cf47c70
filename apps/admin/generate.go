package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// generateCmd materializes the recurring tasks of a user over a range of days.
// Days already materialized are left alone, so the command can be re-run safely.
func (cli *commandLine) generateCmd() *cobra.Command {
	var uname, from, to string
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Materialize the recurring tasks of a user between two dates (YYYY-MM-DD)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			usr, err := cli.usrSvc.GetByUsername(ctx, uname)
			if err != nil {
				return err
			}
			if to == "" {
				to = from
			}

			created, err := cli.taskSvc.GenerateForRange(ctx, usr.ID, from, to)
			if err != nil {
				return err
			}
			fmt.Fprintf(cli.out, "Generated %d recurring task(s) for %q\n", len(created), usr.Username)
			return nil
		},
	}
	cmd.Flags().StringVar(&uname, "username", "", "the user's username")
	cmd.Flags().StringVar(&from, "from", "", "first day of the range")
	cmd.Flags().StringVar(&to, "to", "", "last day of the range (defaults to --from)")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("from")
	return cmd
}
