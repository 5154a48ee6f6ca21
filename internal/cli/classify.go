package cli

import (
	"fmt"
	"strings"

	"ShortletAssistant/pkg/intent"

	"github.com/spf13/cobra"
)

var classifyCmd = &cobra.Command{
	Use:   "classify <utterance>",
	Short: "Show the voice channel intent for an utterance",
	Long: `Runs the keyword classifier used on phone calls and prints the label, its
confidence and the knowledge category it retrieves from.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		utterance := strings.Join(args, " ")
		result := intent.NewKeywordClassifier(nil).Classify(cmd.Context(), utterance, nil)

		fmt.Fprintf(cmd.OutOrStdout(), "intent:     %s\nconfidence: %.2f\ncategory:   %s\n",
			result.Intent, result.Confidence, result.Intent.Category())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(classifyCmd)
}
