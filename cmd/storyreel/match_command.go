package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"storyreel/internal/library"
	"storyreel/internal/logging"
	"storyreel/internal/match"
	"storyreel/internal/script"
)

func newMatchCommand(ctx *commandContext) *cobra.Command {
	var (
		scriptPath string
		project    string
		outputPath string
	)

	cmd := &cobra.Command{
		Use:   "match",
		Short: "Match script scenes to library footage",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.newLogger()
			if err != nil {
				return fmt.Errorf("initialize logging: %w", err)
			}
			logger = logger.With(logging.FieldComponent, "match")

			doc, err := script.Load(scriptPath)
			if err != nil {
				return err
			}

			lock := library.NewLock(cfg.LibraryDBPath())
			if err := lock.Acquire(); err != nil {
				if errors.Is(err, library.ErrLocked) {
					return fmt.Errorf("another storyreel process is using the library; retry once it finishes")
				}
				return err
			}
			defer func() { _ = lock.Release() }()

			store, err := ctx.openStore()
			if err != nil {
				return fmt.Errorf("open library: %w", err)
			}
			defer store.Close()

			searcher, err := ctx.newSearcher(store)
			if err != nil {
				return err
			}
			llm, err := ctx.newGenerator(logger)
			if err != nil {
				return err
			}
			policy, err := ctx.matchPolicy(project)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			matcher := match.NewMatcher(searcher, llm, policy, logger,
				match.WithProgress(func(done, total int) {
					fmt.Fprintf(out, "\rMatching scenes: %d/%d", done, total)
					if done == total {
						fmt.Fprintln(out)
					}
				}))

			report, err := matcher.MatchBatch(cmd.Context(), doc.Scenes)
			if err != nil {
				return err
			}

			target := outputPath
			if target == "" {
				target = scriptPath
			}
			if err := doc.Save(target); err != nil {
				return err
			}

			fmt.Fprintln(out, renderMatches(doc.Scenes))
			fmt.Fprintf(out, "Run %s: %d matched, %d skipped, %d without a match\n",
				report.RunID, report.Matched, report.Skipped, report.NoMatch)
			fmt.Fprintf(out, "Wrote script to %s\n", target)
			return nil
		},
	}

	cmd.Flags().StringVarP(&scriptPath, "script", "s", "", "Script JSON file")
	cmd.Flags().StringVarP(&project, "project", "p", "", "Restrict candidates to this project")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write the matched script here instead of in place")
	_ = cmd.MarkFlagRequired("script")

	return cmd
}

func renderMatches(scenes []script.Scene) string {
	rows := make([][]string, 0, len(scenes))
	for _, scene := range scenes {
		if scene.LibraryMatch == nil {
			rows = append(rows, []string{scene.ID, "-", "", "", ""})
			continue
		}
		m := scene.LibraryMatch
		rows = append(rows, []string{
			scene.ID,
			m.VideoPath,
			fmt.Sprintf("%.2f", m.StartSeconds),
			fmt.Sprintf("%.2f", m.EndSeconds),
			fmt.Sprintf("%.2f", m.Confidence),
		})
	}
	return renderTable([]string{"Scene", "Clip", "In", "Out", "Confidence"}, rows, 2, 3, 4)
}
