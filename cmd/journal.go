package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/rnwolfe/blight/internal/journal"
	"github.com/rnwolfe/blight/internal/tool"
	"github.com/rnwolfe/blight/internal/ui"
)

func newJournalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Inspect a shared action journal",
	}
	cmd.AddCommand(newJournalShowCmd())
	cmd.AddCommand(newJournalIndexCmd())
	return cmd
}

func newJournalShowCmd() *cobra.Command {
	var (
		actionName string
		kindName   string
		asJSON     bool
	)
	cmd := &cobra.Command{
		Use:   "show FILE",
		Short: "Print journal entries, optionally filtered",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var kind tool.Kind
			if kindName != "" {
				k, err := tool.ParseKind(kindName)
				if err != nil {
					return err
				}
				kind = k
			}

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening journal: %w", err)
			}
			defer f.Close()

			out := cmd.OutOrStdout()
			enc := json.NewEncoder(out)
			return journal.Each(f, func(e journal.Entry) error {
				if actionName != "" && e.Action != actionName {
					return nil
				}
				if kind != "" && e.ToolKind != string(kind) {
					return nil
				}
				if asJSON {
					return enc.Encode(e)
				}
				line := fmt.Sprintf("%s %-8s %-7s %-6s %s pid=%d",
					e.Timestamp.Format(time.RFC3339), e.RunID[:min(len(e.RunID), 8)], e.ToolKind, e.Phase, e.Action, e.PID)
				if len(e.Payload) > 0 {
					line += " " + string(e.Payload)
				}
				if e.Error != "" {
					line += " error=" + e.Error
				}
				_, err := fmt.Fprintln(out, line)
				return err
			})
		},
	}
	cmd.Flags().StringVar(&actionName, "action", "", "Only show entries of this action")
	cmd.Flags().StringVar(&kindName, "kind", "", "Only show entries of this tool kind")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print entries as JSON lines")
	return cmd
}

func newJournalIndexCmd() *cobra.Command {
	var dbPath string
	cmd := &cobra.Command{
		Use:   "index FILE",
		Short: "Load a journal into a sqlite database and summarize it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening journal: %w", err)
			}
			defer f.Close()

			ctx := cmd.Context()
			n, err := journal.Index(ctx, dbPath, f)
			if err != nil {
				return err
			}
			ui.Ok(fmt.Sprintf("indexed %d entries into %s", n, dbPath))

			counts, err := journal.Summarize(ctx, dbPath)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%-8s %-14s %7s %7s %6s\n", "KIND", "ACTION", "BEFORE", "AFTER", "RUNS")
			for _, c := range counts {
				fmt.Fprintf(out, "%-8s %-14s %7d %7d %6d\n", c.ToolKind, c.Action, c.Before, c.After, c.Runs)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "journal.db", "sqlite database `FILE` to write")
	return cmd
}
