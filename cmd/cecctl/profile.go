package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newProfileCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "List, create and switch configuration profiles",
	}
	cmd.AddCommand(newProfileListCmd(opts), newProfileCreateCmd(opts), newProfileUseCmd(opts))
	return cmd
}

func newProfileListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List profiles, marking the active one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := opts.openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer database.Close()

			profiles, err := database.Profiles().List(cmd.Context())
			if err != nil {
				return err
			}
			for _, p := range profiles {
				marker := " "
				if p.IsActive {
					marker = "*"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", marker, p.Name)
			}
			return nil
		},
	}
}

func newProfileCreateCmd(opts *rootOptions) *cobra.Command {
	var use bool

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a profile with default settings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := opts.openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer database.Close()

			p, err := database.CreateProfile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if use {
				if err := database.Profiles().SetActive(cmd.Context(), p.ID); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created profile %s\n", p.Name)
			return nil
		},
	}
	cmd.Flags().BoolVar(&use, "use", false, "Make the new profile active")
	return cmd
}

func newProfileUseCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "use <name>",
		Short: "Make a profile active",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := opts.openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer database.Close()

			p, err := database.Profiles().GetByName(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			if err := database.Profiles().SetActive(cmd.Context(), p.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "active profile %s\n", p.Name)
			return nil
		},
	}
}
