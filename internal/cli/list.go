package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tgienger/kanban/internal/models"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the board without starting the UI",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func runList(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer s.close()

	tasks, err := s.repo.ListAllOrdered(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list tasks: %w", err)
	}
	return printBoard(cmd.OutOrStdout(), tasks)
}

// printBoard writes one section per status column.
func printBoard(out io.Writer, tasks []models.Task) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for i, status := range models.Statuses {
		if i > 0 {
			fmt.Fprintln(w)
		}
		column := models.FilterByStatus(tasks, status)
		fmt.Fprintf(w, "%s (%d)\n", status.Title(), len(column))
		for _, t := range column {
			fmt.Fprintf(w, "  %d\t%s\t%s\n", t.Position, t.Title, t.ID)
		}
	}
	return w.Flush()
}
