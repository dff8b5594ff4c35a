package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or change the watchdog configuration",
	}
	cmd.AddCommand(newConfigGetCmd(), newConfigSetCmd())
	return cmd
}

func printConfig(data json.RawMessage) error {
	var cfg map[string]any
	if err := json.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	mode := "incremental"
	if b, _ := cfg["use_cooperative_mode"].(bool); b {
		mode = "cooperative"
	}
	fmt.Printf("Check interval:    %d ms\n", asInt(cfg["check_interval_ms"]))
	fmt.Printf("Sources per check: %d\n", asInt(cfg["sources_per_check"]))
	fmt.Printf("Rebuild interval:  %d ms\n", asInt(cfg["rebuild_interval_ms"]))
	fmt.Printf("Mode:              %s\n", mode)
	return nil
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := client.Get("/api/v1/config")
			if err != nil {
				return fmt.Errorf("get config: %w", err)
			}
			return printConfig(resp.Data)
		},
	}
}

func newConfigSetCmd() *cobra.Command {
	var (
		checkIntervalMs   int64
		sourcesPerCheck   int64
		rebuildIntervalMs int64
		mode              string
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change configuration; the daemon reinstalls its scheduler",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			update := map[string]any{}
			if cmd.Flags().Changed("check-interval-ms") {
				update["check_interval_ms"] = checkIntervalMs
			}
			if cmd.Flags().Changed("sources-per-check") {
				update["sources_per_check"] = sourcesPerCheck
			}
			if cmd.Flags().Changed("rebuild-interval-ms") {
				update["rebuild_interval_ms"] = rebuildIntervalMs
			}
			if cmd.Flags().Changed("mode") {
				switch mode {
				case "incremental":
					update["use_cooperative_mode"] = false
				case "cooperative":
					update["use_cooperative_mode"] = true
				default:
					return fmt.Errorf("invalid mode %q (want incremental or cooperative)", mode)
				}
			}
			if len(update) == 0 {
				return fmt.Errorf("nothing to change; pass at least one flag")
			}

			resp, err := client.Put("/api/v1/config", update)
			if err != nil {
				return fmt.Errorf("set config: %w", err)
			}
			fmt.Println("Configuration applied (values clamped to valid ranges):")
			return printConfig(resp.Data)
		},
	}

	cmd.Flags().Int64Var(&checkIntervalMs, "check-interval-ms", 0, "Tick period in milliseconds [100, 5000]")
	cmd.Flags().Int64Var(&sourcesPerCheck, "sources-per-check", 0, "Entries checked per tick [1, 10]")
	cmd.Flags().Int64Var(&rebuildIntervalMs, "rebuild-interval-ms", 0, "Cache rebuild period in milliseconds [1000, 60000]")
	cmd.Flags().StringVar(&mode, "mode", "", "Scheduling strategy: incremental or cooperative")
	return cmd
}
