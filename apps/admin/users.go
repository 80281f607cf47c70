package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bigplans/backend/core/user"
)

func (cli *commandLine) addUserCmd() *cobra.Command {
	var nu user.NewUser
	cmd := &cobra.Command{
		Use:   "adduser",
		Short: "Create a user. The password is prompted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pwd, err := cli.promptPassword()
			if err != nil {
				return err
			}
			nu.Password = pwd
			if err = nu.Validate(cli.validate); err != nil {
				return err
			}

			usr, err := cli.usrSvc.Create(cmd.Context(), nu)
			if err != nil {
				return err
			}
			fmt.Fprintf(cli.out, "User %q created (id %d)\n", usr.Username, usr.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&nu.Username, "username", "", "the username")
	cmd.Flags().StringVar(&nu.AvatarURL, "avatar", "", "URL of the user's avatar")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}

func (cli *commandLine) resetPasswordCmd() *cobra.Command {
	var pc user.PasswordChange
	cmd := &cobra.Command{
		Use:   "resetpassword",
		Short: "Reset the password of a user. The new password is prompted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pwd, err := cli.promptPassword()
			if err != nil {
				return err
			}
			pc.Password = pwd
			if err = pc.Validate(cli.validate); err != nil {
				return err
			}

			if err = cli.usrSvc.SetPassword(cmd.Context(), pc); err != nil {
				return err
			}
			fmt.Fprintf(cli.out, "Password of %q updated\n", pc.Username)
			return nil
		},
	}
	cmd.Flags().StringVar(&pc.Username, "username", "", "the user's username")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}
