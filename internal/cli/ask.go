package cli

import (
	"fmt"
	"io"
	"strings"

	"ShortletAssistant/pkg/intent"
	"ShortletAssistant/pkg/knowledge"
	"ShortletAssistant/pkg/rag"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	askBundle   string
	askProperty string
)

var askCmd = &cobra.Command{
	Use:   "ask --bundle <file> [--property <id>] <utterance>",
	Short: "Answer a question offline from a knowledge bundle",
	Long: `Loads the bundle into a fresh store and runs the voice pipeline with the
extractive strategy. No language model is called.

Examples:
  kbctl ask --bundle seeds/lekki.yaml --property prop-001 "what time is check-in"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if askBundle == "" {
			return fmt.Errorf("--bundle is required")
		}

		bundle, err := knowledge.LoadBundleFile(askBundle)
		if err != nil {
			return fmt.Errorf("loading bundle: %w", err)
		}

		store := knowledge.NewStore()
		if _, err := bundle.Apply(store); err != nil {
			return err
		}

		logger := logrus.New()
		logger.SetOutput(io.Discard)
		pipeline := rag.NewPipeline(
			intent.NewKeywordClassifier(nil),
			store,
			rag.NewGenerator(rag.GeneratorConfig{Strategy: rag.StrategyExtractive}, nil, logger),
		)

		var property *knowledge.PropertyDocuments
		for i := range bundle.Properties {
			if bundle.Properties[i].PropertyID == askProperty {
				property = &bundle.Properties[i]
			}
		}
		query := rag.Query{PropertyID: askProperty, Utterance: strings.Join(args, " ")}
		if property != nil && property.Profile != nil {
			query.Property = property.Profile
		}

		result := pipeline.Run(cmd.Context(), query)

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "intent:    %s (%.2f)\n", result.Intent.Intent, result.Intent.Confidence)
		fmt.Fprintf(out, "documents: %d %v\n", result.DocumentsFound, result.Sources)
		fmt.Fprintf(out, "escalate:  %t\n", result.Escalate)
		fmt.Fprintf(out, "answer:    %s\n", result.Response.Response)
		return nil
	},
}

func init() {
	askCmd.Flags().StringVar(&askBundle, "bundle", "", "path to a YAML knowledge bundle")
	askCmd.Flags().StringVar(&askProperty, "property", "", "property id to answer for (empty for the global set)")
	rootCmd.AddCommand(askCmd)
}
