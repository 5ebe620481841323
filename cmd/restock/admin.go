package main

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/dmitrymomot/restock/svc/auth"
)

func newAdminCmd() *cobra.Command {
	admin := &cobra.Command{
		Use:   "admin",
		Short: "Administrative tasks",
	}
	admin.AddCommand(newAdminCreateCmd())
	return admin
}

func newAdminCreateCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user with the admin role",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			log := newLogger(cfg)
			ctx := cmd.Context()

			if email == "" {
				if email, err = (&promptui.Prompt{Label: "Email", Validate: requireValue}).Run(); err != nil {
					return err
				}
			}
			if password == "" {
				if password, err = promptPassword(); err != nil {
					return err
				}
			}

			be, err := openBackend(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer be.close()

			authority := auth.NewAuthority(be.store, nil, auth.WithLogger(log), auth.WithBcryptCost(cfg.BcryptCost))
			u, err := authority.Register(ctx, email, password, auth.RoleAdmin)
			if err != nil {
				return err
			}
			color.Green("admin %s created (id %s)", u.Email, u.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "admin email (prompted when empty)")
	cmd.Flags().StringVar(&password, "password", "", "admin password (prompted when empty)")
	return cmd
}

func requireValue(s string) error {
	if s == "" {
		return errors.New("value is required")
	}
	return nil
}

func promptPassword() (string, error) {
	pw, err := (&promptui.Prompt{
		Label: "Password",
		Mask:  '*',
		Validate: func(s string) error {
			if len(s) < 6 {
				return errors.New("password must be at least 6 characters")
			}
			return nil
		},
	}).Run()
	if err != nil {
		return "", err
	}

	confirm, err := (&promptui.Prompt{Label: "Confirm password", Mask: '*'}).Run()
	if err != nil {
		return "", err
	}
	if confirm != pw {
		return "", fmt.Errorf("passwords do not match")
	}
	return pw, nil
}
