package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the watchdog's scheduling state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := client.Get("/api/v1/status")
			if err != nil {
				return fmt.Errorf("get status: %w", err)
			}

			var data map[string]any
			if err := json.Unmarshal(resp.Data, &data); err != nil {
				return fmt.Errorf("parse response: %w", err)
			}

			mode, _ := data["mode"].(string)
			cacheSize, _ := data["cache_size"].(float64)
			cursor, _ := data["cursor"].(float64)
			lastRebuild, _ := data["last_rebuild"].(string)
			loaded, _ := data["loaded"].(string)

			fmt.Printf("Mode:         %s\n", mode)
			fmt.Printf("Loaded:       %s\n", loaded)
			fmt.Printf("Cache:        %d entries (cursor at %d)\n", int(cacheSize), int(cursor))
			fmt.Printf("Last rebuild: %s\n", lastRebuild)

			if inc, ok := data["incremental"].(map[string]any); ok {
				fmt.Printf("Ticks:        %d (%d checked, %d rebuilds, %d compactions)\n",
					asInt(inc["ticks"]), asInt(inc["checked"]), asInt(inc["rebuilds"]), asInt(inc["compactions"]))
			}
			if coop, ok := data["cooperative"].(map[string]any); ok {
				fmt.Printf("Ticks:        %d (%d steps, %d passes, %d resets)\n",
					asInt(coop["ticks"]), asInt(coop["steps"]), asInt(coop["passes"]), asInt(coop["resets"]))
			}
			if att, ok := data["attempts"].(map[string]any); ok {
				fmt.Printf("Attempts:     %d total\n", asInt(att["total"]))
			}
			return nil
		},
	}
}

func asInt(v any) int {
	f, _ := v.(float64)
	return int(f)
}
