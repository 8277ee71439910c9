// Command assessctl scores answer files offline and manages the service database.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "assessctl",
		Short:         "Leadership assessment tooling",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newScoreCmd(), newCatalogueCmd(), newMigrateCmd())
	return root
}
