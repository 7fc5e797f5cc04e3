package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/turbolytics/csvjson/internal/cmd/convert"
)

// Version is set at build time via ldflags.
var Version = "dev"

func NewRootCommand() *cobra.Command {
	var cmd = &cobra.Command{
		Use:   "csvjson",
		Short: "Converts CSV coordinate files into JSON position documents",
		Long: `csvjson reads a CSV file whose header names x, y and z coordinate
columns, rounds every coordinate to the nearest integer and writes all rows
as {"position": [...]}. Other columns are passed through as text.`,
		SilenceUsage: true,
	}

	cmd.AddCommand(convert.NewCommand())
	cmd.AddCommand(newVersionCommand())

	return cmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version of csvjson",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "csvjson %s\n", Version)
		},
	}
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := NewRootCommand()
	if err := cmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
