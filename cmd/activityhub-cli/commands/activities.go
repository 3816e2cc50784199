package commands

import (
	"encoding/json"
	"fmt"

	"activityhub-backend/services/activities"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	activitiesCmd.AddCommand(activitiesListCmd)
	activitiesCmd.AddCommand(activitiesGetCmd)
	rootCmd.AddCommand(activitiesCmd)
}

var activitiesCmd = &cobra.Command{
	Use:   "activities",
	Short: "Reads the cached activity records.",
}

var activitiesListCmd = &cobra.Command{
	Use:   "list",
	Short: "Lists every cached activity.",
	Args:  cobra.MaximumNArgs(0),
	Run: func(cmd *cobra.Command, args []string) {
		res, err := client().R().
			SetContext(cmd.Context()).
			Get("/activities")
		if err != nil {
			fatal("list activities", err)
		}
		if res.IsError() {
			fatal("list activities", fmt.Errorf("status %d: %s", res.StatusCode(), res.Body()))
		}

		var records []activities.ActivityRecord
		err = json.Unmarshal(res.Body(), &records)
		if err != nil {
			fatal("decode response", err)
		}

		t := newTable()
		t.AppendHeader(table.Row{"Id", "Name", "Category", "Day", "Teacher"})
		for _, rec := range records {
			t.AppendRow(table.Row{rec.ID, rec.Name, rec.Category, rec.Day, rec.Teacher})
		}
		t.Render()
	},
}

var activitiesGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Shows one cached activity in full.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		res, err := client().R().
			SetContext(cmd.Context()).
			Get("/activities/" + args[0])
		if err != nil {
			fatal("get activity", err)
		}
		if res.IsError() {
			fatal("get activity", fmt.Errorf("status %d: %s", res.StatusCode(), res.Body()))
		}

		var rec activities.ActivityRecord
		err = json.Unmarshal(res.Body(), &rec)
		if err != nil {
			fatal("decode response", err)
		}

		t := newTable()
		t.AppendRow(table.Row{"Id", rec.ID})
		t.AppendRow(table.Row{"Name", rec.Name})
		t.AppendRow(table.Row{"Category", rec.Category})
		t.AppendRow(table.Row{"Description", rec.Description})
		t.AppendRow(table.Row{"Location", rec.Location})
		t.AppendRow(table.Row{"Day", rec.Day})
		t.AppendRow(table.Row{"Time", rec.StartTime + " - " + rec.EndTime})
		t.AppendRow(table.Row{"Teacher", rec.Teacher})
		t.AppendRow(table.Row{"Contact", rec.ContactEmail})
		t.AppendRow(table.Row{"Max participants", rec.MaxParticipants})
		t.AppendRow(table.Row{"Cost", rec.Cost})
		t.AppendRow(table.Row{"Photo", rec.PhotoUrl})
		if rec.LastCheck != nil {
			t.AppendRow(table.Row{"Last check", rec.LastCheck})
		}
		t.Render()
	},
}
