package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"storyreel/internal/cluster"
	"storyreel/internal/library"
	"storyreel/internal/logging"
	"storyreel/internal/match"
)

func newLibraryCommand(ctx *commandContext) *cobra.Command {
	libraryCmd := &cobra.Command{
		Use:   "library",
		Short: "Manage the footage library index",
	}

	libraryCmd.AddCommand(newLibraryImportCommand(ctx))
	libraryCmd.AddCommand(newLibraryStatsCommand(ctx))
	libraryCmd.AddCommand(newLibraryClustersCommand(ctx))
	libraryCmd.AddCommand(newLibrarySearchCommand(ctx))

	return libraryCmd
}

// importDocument is the indexer export shape: either a bare segment
// array or an object wrapping one.
type importDocument struct {
	Segments []cluster.VideoSegment `json:"segments"`
}

func loadImportFile(path string) ([]cluster.VideoSegment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read segments file: %w", err)
	}
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		var segments []cluster.VideoSegment
		if err := json.Unmarshal(data, &segments); err != nil {
			return nil, fmt.Errorf("parse segments %s: %w", path, err)
		}
		return segments, nil
	}
	var doc importDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse segments %s: %w", path, err)
	}
	return doc.Segments, nil
}

func newLibraryImportCommand(ctx *commandContext) *cobra.Command {
	var (
		project string
		file    string
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import indexed segments into the library",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.newLogger()
			if err != nil {
				return fmt.Errorf("initialize logging: %w", err)
			}
			logger = logger.With(logging.FieldComponent, "library")

			segments, err := loadImportFile(file)
			if err != nil {
				return err
			}
			if len(segments) == 0 {
				return fmt.Errorf("no segments found in %s", file)
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

			count, err := store.ImportSegments(cmd.Context(), project, segments)
			if err != nil {
				return err
			}
			logger.Info("imported segments", "project", project, "count", count)
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d segment(s) into project %s\n", count, project)
			return nil
		},
	}

	cmd.Flags().StringVarP(&project, "project", "p", "", "Project name")
	cmd.Flags().StringVarP(&file, "file", "f", "", "Indexer JSON export to import")
	_ = cmd.MarkFlagRequired("project")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func newLibraryStatsCommand(ctx *commandContext) *cobra.Command {
	var project string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show library counts for a project",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return fmt.Errorf("open library: %w", err)
			}
			defer store.Close()

			stats, err := store.ProjectStats(cmd.Context(), project)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Project", "Videos", "Segments", "Clusters"},
				[][]string{{
					project,
					fmt.Sprintf("%d", stats.Videos),
					fmt.Sprintf("%d", stats.Segments),
					fmt.Sprintf("%d", stats.Clusters),
				}}, 1, 2, 3))
			return nil
		},
	}

	cmd.Flags().StringVarP(&project, "project", "p", "", "Project name")
	_ = cmd.MarkFlagRequired("project")

	return cmd
}

func newLibraryClustersCommand(ctx *commandContext) *cobra.Command {
	var project string

	cmd := &cobra.Command{
		Use:   "clusters",
		Short: "List stored scene clusters for a project",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return fmt.Errorf("open library: %w", err)
			}
			defer store.Close()

			records, err := store.ListClusters(cmd.Context(), project)
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(records))
			for _, rec := range records {
				rows = append(rows, []string{
					fmt.Sprintf("%d", rec.Index),
					rec.VideoPath,
					fmt.Sprintf("%.2f", rec.StartSeconds),
					fmt.Sprintf("%.2f", rec.EndSeconds),
					fmt.Sprintf("%d", rec.SegmentCount),
					truncate(rec.Summary, 48),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Cluster", "Video", "Start", "End", "Segments", "Summary"},
				rows, 0, 2, 3, 4))
			return nil
		},
	}

	cmd.Flags().StringVarP(&project, "project", "p", "", "Project name")
	_ = cmd.MarkFlagRequired("project")

	return cmd
}

func newLibrarySearchCommand(ctx *commandContext) *cobra.Command {
	var (
		project     string
		limit       int
		granularity string
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Keyword-search the library index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return fmt.Errorf("open library: %w", err)
			}
			defer store.Close()

			hits, err := store.Search(cmd.Context(), args[0], limit,
				match.Granularity(granularity), project)
			if err != nil {
				return err
			}
			if len(hits) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No matches")
				return nil
			}
			rows := make([][]string, 0, len(hits))
			for _, hit := range hits {
				rows = append(rows, []string{
					hit.VideoPath,
					fmt.Sprintf("%.2f", hit.Start),
					fmt.Sprintf("%.2f", hit.End),
					fmt.Sprintf("%.2f", hit.Score),
					truncate(hit.Description, 48),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Video", "Start", "End", "Score", "Description"},
				rows, 1, 2, 3))
			return nil
		},
	}

	cmd.Flags().StringVarP(&project, "project", "p", "", "Project name")
	cmd.Flags().IntVarP(&limit, "limit", "n", 8, "Maximum results")
	cmd.Flags().StringVarP(&granularity, "granularity", "g", "segments", "Search granularity (segments, clusters, both)")
	_ = cmd.MarkFlagRequired("project")

	return cmd
}
