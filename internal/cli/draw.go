package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hikaru/emojitale/internal/config"
	"github.com/hikaru/emojitale/pkg/ollama"
)

var (
	drawCount       int
	drawNotes       string
	drawStory       bool
	drawSave        bool
	drawModel       string
	drawWords       int
	drawTemperature float64
)

var drawCmd = &cobra.Command{
	Use:   "draw",
	Short: "Draw a set of unique emoji prompts",
	Long: `Draw random unique emojis from the catalog. Optionally generate a
story from them with a local Ollama model and journal the result as a
session.`,
	RunE: runDraw,
}

func init() {
	rootCmd.AddCommand(drawCmd)

	drawCmd.Flags().IntVarP(&drawCount, "count", "n", 3, "number of emojis to draw (clamped to 1-10)")
	drawCmd.Flags().StringVar(&drawNotes, "notes", "", "notes to journal with the session")
	drawCmd.Flags().BoolVar(&drawStory, "story", false, "generate a story from the drawn emojis")
	drawCmd.Flags().BoolVar(&drawSave, "save", false, "journal the session")
	drawCmd.Flags().StringVar(&drawModel, "model", "", "generation model (default from config)")
	drawCmd.Flags().IntVar(&drawWords, "words", 0, "target story word count (default from config)")
	drawCmd.Flags().Float64Var(&drawTemperature, "temperature", 0, "generation temperature (default from config)")
}

func runDraw(cmd *cobra.Command, args []string) error {
	svc, err := newServices()
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx := cmd.Context()

	emojis := svc.sampler.Draw(drawCount)
	if len(emojis) < drawCount {
		fmt.Fprintf(cmd.ErrOrStderr(), "catalog holds only %d symbols\n", len(emojis))
	}
	fmt.Fprintln(cmd.OutOrStdout(), strings.Join(emojis, " "))

	notes := drawNotes
	if drawStory {
		opts := ollama.GenerateOptions{
			Model:       drawModel,
			WordCount:   orDefault(drawWords, svc.cfg.Ollama.WordCount),
			Temperature: orDefaultFloat(drawTemperature, svc.cfg.Ollama.Temperature),
		}
		validator := config.NewValidator()
		if err := validator.ValidateWordCount(opts.WordCount); err != nil {
			return err
		}
		if err := validator.ValidateTemperature(opts.Temperature); err != nil {
			return err
		}
		story, err := svc.ollama.GenerateStory(ctx, emojis, opts)
		if err != nil {
			if ollama.IsRetryable(err) {
				return fmt.Errorf("%w (is Ollama running? try again)", err)
			}
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout())
		fmt.Fprintln(cmd.OutOrStdout(), story)

		if notes == "" {
			notes = story
		}
	}

	if drawSave {
		id, err := svc.store.Append(ctx, emojis, notes)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "\nsaved session %s\n", id)
	}

	return nil
}

func orDefault(v, fallback int) int {
	if v > 0 {
		return v
	}
	return fallback
}

func orDefaultFloat(v, fallback float64) float64 {
	if v > 0 {
		return v
	}
	return fallback
}
