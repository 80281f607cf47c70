package main

import (
	"github.com/spf13/cobra"

	"github.com/bigplans/backend/storage/database"
)

var migrateFunc = database.RunMigrations // mockable

func (cli *commandLine) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate COMMAND [ARGS...]",
		Short: "Run a goose command (up, down, status, redo, up-to VERSION, ...) against the database",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return migrateFunc(cmd.Context(), cli.db, args[0], args[1:]...)
		},
	}
}
