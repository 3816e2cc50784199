package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/go-resty/resty/v2"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var serverUrl *string

var rootCmd = &cobra.Command{
	Use:   "activityhub-cli",
	Short: "activityhub-cli inspects and pokes a running activityhubd.",
}

func init() {
	serverUrl = rootCmd.PersistentFlags().String("server", "http://localhost:8000", "Base URL of the activityhubd instance.")
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func client() *resty.Client {
	return resty.New().SetBaseURL(*serverUrl + "/v1")
}

func fatal(message string, err error) {
	fmt.Fprintf(os.Stderr, "%s: %s\n", message, err)
	os.Exit(1)
}

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(os.Stdout)
	return t
}
