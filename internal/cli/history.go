package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pipecheck/pkg/history"
)

// historyCommand creates the history command that lists recent runs.
func (c *CLI) historyCommand() *cobra.Command {
	var limit int
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent pipeline checks",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.newHistoryStore(false)
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			defer store.Close()

			records, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}

			if jsonOut {
				return json.NewEncoder(os.Stdout).Encode(records)
			}
			if len(records) == 0 {
				printInfo("No history yet")
				return nil
			}
			for _, rec := range records {
				printRecord(rec)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum records to show")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "write records as JSON")

	return cmd
}

// printRecord writes one history entry as a single line.
func printRecord(rec history.Record) {
	icon := styleIconSuccess.Render(iconSuccess)
	if !rec.IsDAG {
		icon = styleIconError.Render(iconError)
	}

	source := rec.Source
	if source == "" {
		source = "?"
	}

	line := fmt.Sprintf("%s  %s  %3d nodes  %3d edges  %4dms  %s",
		icon,
		rec.CreatedAt.Local().Format("2006-01-02 15:04:05"),
		rec.NumNodes,
		rec.NumEdges,
		rec.DurationMS,
		source,
	)
	if rec.Cached {
		line += "  " + styleCached.Render(iconCached)
	}
	fmt.Println(line)
}
