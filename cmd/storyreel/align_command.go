package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"storyreel/internal/align"
	"storyreel/internal/logging"
	"storyreel/internal/script"
	"storyreel/internal/transcript"
)

func newAlignCommand(ctx *commandContext) *cobra.Command {
	var (
		scriptPath     string
		transcriptPath string
		outputPath     string
		apply          bool
	)

	cmd := &cobra.Command{
		Use:   "align",
		Short: "Align script scenes to the narration transcript",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.newLogger()
			if err != nil {
				return fmt.Errorf("initialize logging: %w", err)
			}
			logger = logger.With(logging.FieldComponent, "align")

			doc, err := script.Load(scriptPath)
			if err != nil {
				return err
			}
			words, err := transcript.Load(transcriptPath)
			if err != nil {
				return err
			}

			outcome := align.AlignScenesToAudio(doc.Scenes, words, cfg.Align.FuzzyThreshold)
			logger.Info("alignment finished",
				"scenes", len(doc.Scenes),
				"resolved", len(outcome.Results),
				"review", len(outcome.Review))

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderAlignment(outcome, cfg.Align.ReviewConfidence))
			if len(outcome.Review) > 0 {
				fmt.Fprintf(out, "%d scene(s) need review (confidence below %.2f)\n",
					len(outcome.Review), cfg.Align.ReviewConfidence)
			}

			if outputPath != "" {
				if err := writeAlignment(outputPath, outcome); err != nil {
					return err
				}
				fmt.Fprintf(out, "Wrote alignment to %s\n", outputPath)
			}

			if apply {
				applyAlignment(doc, outcome)
				if err := doc.Save(scriptPath); err != nil {
					return err
				}
				fmt.Fprintf(out, "Updated scene timings in %s\n", scriptPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&scriptPath, "script", "s", "", "Script JSON file")
	cmd.Flags().StringVarP(&transcriptPath, "transcript", "t", "", "Narration transcript JSON file")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write alignment results to this JSON file")
	cmd.Flags().BoolVar(&apply, "apply", false, "Write resolved timings back into the script file")
	_ = cmd.MarkFlagRequired("script")
	_ = cmd.MarkFlagRequired("transcript")

	return cmd
}

func renderAlignment(outcome align.Outcome, reviewConfidence float64) string {
	rows := make([][]string, 0, len(outcome.Results))
	for _, r := range outcome.Results {
		flag := ""
		if r.Confidence < reviewConfidence {
			flag = "review"
		}
		rows = append(rows, []string{
			r.SceneID,
			fmt.Sprintf("%.2f", r.StartSeconds),
			fmt.Sprintf("%.2f", r.EndSeconds),
			fmt.Sprintf("%.2f", r.Confidence),
			truncate(r.MatchedText, 48),
			flag,
		})
	}
	return renderTable([]string{"Scene", "Start", "End", "Confidence", "Matched Text", ""}, rows, 1, 2, 3)
}

func writeAlignment(path string, outcome align.Outcome) error {
	data, err := json.MarshalIndent(outcome, "", "  ")
	if err != nil {
		return fmt.Errorf("encode alignment: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write alignment: %w", err)
	}
	return nil
}

// applyAlignment copies resolved time ranges back onto the matching
// scenes. Unresolved scenes keep whatever timings they already carry.
func applyAlignment(doc *script.Script, outcome align.Outcome) {
	byScene := make(map[string]align.Result, len(outcome.Results))
	for _, r := range outcome.Results {
		byScene[r.SceneID] = r
	}
	for i := range doc.Scenes {
		r, ok := byScene[doc.Scenes[i].ID]
		if !ok || r.Confidence == 0 {
			continue
		}
		doc.Scenes[i].StartSeconds = r.StartSeconds
		doc.Scenes[i].EndSeconds = r.EndSeconds
	}
}

func truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
