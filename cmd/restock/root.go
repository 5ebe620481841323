package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "restock",
		Short:         "Product catalog with restock subscriptions",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newServeCmd(),
		newMigrateCmd(),
		newSeedCmd(),
		newAdminCmd(),
	)
	return root
}
