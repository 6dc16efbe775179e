package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/answer-engine/internal/model"
)

var (
	askIntent string
	askJSON   bool
)

var askCmd = &cobra.Command{
	Use:   "ask [query]",
	Short: "Answer a single query from the command line",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEngine("ask")
		if err != nil {
			return err
		}
		defer env.Close()

		resp, err := env.Pipeline.Run(cmd.Context(), model.AnswerRequest{
			Query:  strings.Join(args, " "),
			Intent: model.Intent(askIntent),
		})
		if err != nil {
			return eris.Wrap(err, "run pipeline")
		}

		zap.L().Info("answer ready",
			zap.String("intent", string(resp.QueryIntent)),
			zap.Int("sources", len(resp.Sources)),
			zap.Float64("confidence", resp.Confidence),
			zap.Int64("duration_ms", resp.ProcessingTimeMs),
		)

		if askJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(resp)
		}

		fmt.Println(resp.Answer)
		if len(resp.Sources) > 0 {
			fmt.Println("\nSources:")
			for i, s := range resp.Sources {
				fmt.Printf("  [%d] %s\n      %s\n", i+1, s.Title, s.URL)
			}
		}
		if len(resp.FollowUpQuestions) > 0 {
			fmt.Println("\nFollow-up questions:")
			for _, q := range resp.FollowUpQuestions {
				fmt.Printf("  - %s\n", q)
			}
		}
		return nil
	},
}

func init() {
	askCmd.Flags().StringVar(&askIntent, "intent", "", "override intent classification (technical, shopping, news, research, general)")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "print the full response as JSON")
	rootCmd.AddCommand(askCmd)
}
