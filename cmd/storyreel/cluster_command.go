package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"storyreel/internal/cluster"
	"storyreel/internal/logging"
)

func newClusterCommand(ctx *commandContext) *cobra.Command {
	var (
		project string
		refine  bool
	)

	cmd := &cobra.Command{
		Use:   "cluster",
		Short: "Group library segments into scene clusters",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.newLogger()
			if err != nil {
				return fmt.Errorf("initialize logging: %w", err)
			}
			logger = logger.With(logging.FieldComponent, "cluster")

			store, err := ctx.openStore()
			if err != nil {
				return fmt.Errorf("open library: %w", err)
			}
			defer store.Close()

			segments, err := store.ListSegments(cmd.Context(), project)
			if err != nil {
				return err
			}
			if len(segments) == 0 {
				return fmt.Errorf("no segments imported for project %q", project)
			}

			clusters := clusterByVideo(segments, cluster.Options{
				MaxGap:           cfg.Cluster.MaxGapSeconds,
				MinPeopleOverlap: cfg.Cluster.MinPeopleOverlap,
			})
			logger.Info("clustered segments", "project", project,
				"segments", len(segments), "clusters", len(clusters))

			if refine || cfg.Cluster.LLMRefinement {
				llm, err := ctx.newGenerator(logger)
				if err != nil {
					return err
				}
				if llm != nil {
					before := len(clusters)
					detector := cluster.NewBoundaryDetector(llm, logger)
					clusters = detector.RefineClusters(cmd.Context(), clusters)
					if len(clusters) != before {
						logger.Info("refinement split clusters",
							"before", before, "after", len(clusters))
					}
				}
			}

			if err := store.ReplaceClusters(cmd.Context(), project, clusters); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			rows := make([][]string, 0, len(clusters))
			for _, c := range clusters {
				video := ""
				if len(c.Segments) > 0 {
					video = c.Segments[0].VideoPath
				}
				rows = append(rows, []string{
					fmt.Sprintf("%d", c.ID),
					video,
					fmt.Sprintf("%.2f", c.Start()),
					fmt.Sprintf("%.2f", c.End()),
					fmt.Sprintf("%d", len(c.Segments)),
					truncate(joinPeople(c), 40),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Cluster", "Video", "Start", "End", "Segments", "People"},
				rows, 0, 2, 3, 4))
			fmt.Fprintf(out, "Stored %d cluster(s) for project %s\n", len(clusters), project)
			return nil
		},
	}

	cmd.Flags().StringVarP(&project, "project", "p", "", "Project name")
	cmd.Flags().BoolVar(&refine, "refine", false, "Ask the LLM to split clusters at scene boundaries")
	_ = cmd.MarkFlagRequired("project")

	return cmd
}

// clusterByVideo clusters each video's segments independently, since
// timestamps from different files share a timeline origin, then
// renumbers cluster ids sequentially across the project.
func clusterByVideo(segments []cluster.VideoSegment, opts cluster.Options) []cluster.SceneCluster {
	byVideo := make(map[string][]cluster.VideoSegment)
	var order []string
	for _, seg := range segments {
		if _, seen := byVideo[seg.VideoPath]; !seen {
			order = append(order, seg.VideoPath)
		}
		byVideo[seg.VideoPath] = append(byVideo[seg.VideoPath], seg)
	}
	sort.Strings(order)

	var out []cluster.SceneCluster
	for _, video := range order {
		for _, c := range cluster.ClusterSegments(byVideo[video], opts) {
			c.ID = len(out)
			out = append(out, c)
		}
	}
	return out
}

func joinPeople(c cluster.SceneCluster) string {
	return strings.Join(c.People(), ", ")
}
