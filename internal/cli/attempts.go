package cli

import (
	"encoding/json"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/me/sourcewatch/pkg/model"
)

func newAttemptsCmd() *cobra.Command {
	var limit, offset int

	cmd := &cobra.Command{
		Use:   "attempts",
		Short: "List recent reactivation attempts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := fmt.Sprintf("/api/v1/attempts?limit=%d&offset=%d", limit, offset)
			resp, err := client.Get(path)
			if err != nil {
				return fmt.Errorf("list attempts: %w", err)
			}

			var recs []model.AttemptRecord
			if err := json.Unmarshal(resp.Data, &recs); err != nil {
				return fmt.Errorf("parse response: %w", err)
			}

			if len(recs) == 0 {
				fmt.Println("No reactivation attempts recorded.")
				return nil
			}

			total := len(recs)
			if resp.Pagination != nil {
				total = resp.Pagination.Total
			}
			fmt.Printf("Showing %d of %d attempts:\n", len(recs), total)
			for _, rec := range recs {
				fmt.Printf("  %-10s %-24s %-20s %-18s %s\n",
					rec.ID, rec.ResourceName, rec.TypeID, rec.Control,
					humanize.Time(rec.CreatedAt.Local()))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum attempts to list")
	cmd.Flags().IntVar(&offset, "offset", 0, "Offset into the attempt history")
	return cmd
}
