package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "kbctl",
	Short: "Inspect and exercise the guest assistant knowledge base",
	Long: `kbctl works on knowledge bundles without a running server.

It validates YAML bundles before they are uploaded, shows how an utterance is
classified, answers a question offline from a bundle, and mints admin tokens
for the knowledge API.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
