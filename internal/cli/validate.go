package cli

import (
	"fmt"

	"ShortletAssistant/pkg/knowledge"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <bundle> [bundle...]",
	Short: "Check knowledge bundles for schema and document errors",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		failed := 0
		for _, path := range args {
			bundle, err := knowledge.LoadBundleFile(path)
			if err != nil {
				failed++
				fmt.Fprintf(out, "FAIL %s: %v\n", path, err)
				continue
			}

			documents := 0
			for _, property := range bundle.Properties {
				documents += len(property.Documents)
			}
			fmt.Fprintf(out, "ok   %s: %d properties, %d documents\n", path, len(bundle.Properties), documents)
		}

		if failed > 0 {
			return fmt.Errorf("%d of %d bundles are invalid", failed, len(args))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
