package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	refreshCmd.AddCommand(refreshPopulateCmd)
	refreshCmd.AddCommand(refreshSweepCmd)
	refreshCmd.AddCommand(refreshStaffCmd)
	rootCmd.AddCommand(refreshCmd)
}

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Triggers reconciliation passes on the server.",
}

func trigger(cmd *cobra.Command, path string) {
	res, err := client().R().
		SetContext(cmd.Context()).
		Post(path)
	if err != nil {
		fatal("trigger pass", err)
	}
	if res.IsError() {
		fatal("trigger pass", fmt.Errorf("status %d: %s", res.StatusCode(), res.Body()))
	}
	fmt.Println("started")
}

var refreshPopulateCmd = &cobra.Command{
	Use:   "populate",
	Short: "Fetches every activity missing from the cache.",
	Args:  cobra.MaximumNArgs(0),
	Run: func(cmd *cobra.Command, args []string) {
		trigger(cmd, "/admin/populate")
	},
}

var refreshSweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Re-fetches stale cache entries and cleans up orphaned photos.",
	Args:  cobra.MaximumNArgs(0),
	Run: func(cmd *cobra.Command, args []string) {
		trigger(cmd, "/admin/sweep")
	},
}

var refreshStaffCmd = &cobra.Command{
	Use:   "staff",
	Short: "Re-fetches the staff list.",
	Args:  cobra.MaximumNArgs(0),
	Run: func(cmd *cobra.Command, args []string) {
		trigger(cmd, "/admin/staff")
	},
}
