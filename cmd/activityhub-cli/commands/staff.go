package commands

import (
	"encoding/json"
	"fmt"

	"activityhub-backend/services/activities"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(staffCmd)
}

var staffCmd = &cobra.Command{
	Use:   "staff",
	Short: "Shows the cached staff list.",
	Args:  cobra.MaximumNArgs(0),
	Run: func(cmd *cobra.Command, args []string) {
		res, err := client().R().
			SetContext(cmd.Context()).
			Get("/staff")
		if err != nil {
			fatal("get staff", err)
		}
		if res.IsError() {
			fatal("get staff", fmt.Errorf("status %d: %s", res.StatusCode(), res.Body()))
		}

		var rec activities.StaffRecord
		err = json.Unmarshal(res.Body(), &rec)
		if err != nil {
			fatal("decode response", err)
		}

		t := newTable()
		t.AppendHeader(table.Row{"Name", "Role", "Email"})
		for _, member := range rec.Members {
			t.AppendRow(table.Row{member.Name, member.Role, member.Email})
		}
		t.Render()
	},
}
