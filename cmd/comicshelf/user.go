package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eringen/comicshelf"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage reader accounts",
}

var userAddCmd = &cobra.Command{
	Use:   "add <email> <password>",
	Short: "Create a reader account",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := siteConfig(cmd)
		if err != nil {
			return err
		}
		store, err := comicshelf.NewStore(cfg.DatabasePath)
		if err != nil {
			return err
		}
		defer store.Close()

		u, err := comicshelf.RegisterUser(cmd.Context(), store, args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created user %s (%s)\n", u.Email, u.ID)
		return nil
	},
}

func init() {
	userCmd.AddCommand(userAddCmd)
}
