package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"studybuddy/internal/bootstrap"
	"studybuddy/internal/pkg/quizpdf"
)

var (
	quizCount   int
	quizPDFPath string
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask the tutor a question about the indexed material",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, "ask", func(ctx context.Context, a *bootstrap.App) error {
			answer, err := a.Tutor.Answer(ctx, strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), answer)
			return nil
		})
	},
}

var quizCmd = &cobra.Command{
	Use:   "quiz <topic>",
	Short: "Generate a quiz from the indexed material",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, "quiz", func(ctx context.Context, a *bootstrap.App) error {
			quiz, err := a.Quiz.Create(ctx, strings.Join(args, " "), quizCount)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(quiz); err != nil {
				return err
			}

			if quizPDFPath == "" {
				return nil
			}
			doc, err := quizpdf.Render(quiz, quizpdf.Options{WithAnswers: true, FontPath: quizpdf.DefaultFontPath})
			if err != nil {
				return err
			}
			if err := os.WriteFile(quizPDFPath, doc, 0o644); err != nil {
				return fmt.Errorf("write quiz pdf failed: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", quizPDFPath)
			return nil
		})
	},
}

func init() {
	quizCmd.Flags().IntVarP(&quizCount, "num", "n", 5, "number of questions")
	quizCmd.Flags().StringVar(&quizPDFPath, "pdf", "", "also write the quiz with answers to this PDF file")
	rootCmd.AddCommand(askCmd, quizCmd)
}
