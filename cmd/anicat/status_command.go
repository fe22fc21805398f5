package main

import (
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"anicat/internal/journal"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show recent sync runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := journal.Open(cfg.JournalPath())
			if err != nil {
				return fmt.Errorf("open journal: %w", err)
			}
			defer store.Close()

			runs, err := store.LastRuns(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("load runs: %w", err)
			}
			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded yet.")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderRuns(runs))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "Number of runs to display")
	return cmd
}

func renderRuns(runs []journal.Run) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Run", "Started", "Duration", "Status", "Pages", "Items", "Inserted", "Dup", "No Match", "Failed"})
	for _, run := range runs {
		tw.AppendRow(table.Row{
			run.ID,
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			formatRunDuration(run),
			run.Status,
			run.Stats.Pages,
			run.Stats.Items,
			run.Stats.Inserted,
			run.Stats.Duplicates,
			run.Stats.NoMatch,
			run.Stats.Failed,
		})
	}
	configs := append([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
	}, rightAlignedColumns(5, 10)...)
	tw.SetColumnConfigs(configs)
	return tw.Render()
}

func formatRunDuration(run journal.Run) string {
	if run.FinishedAt.IsZero() {
		return "-"
	}
	return run.FinishedAt.Sub(run.StartedAt).Round(time.Second).String()
}
