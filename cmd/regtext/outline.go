package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/policyops/regtext/internal/clause"
	"github.com/policyops/regtext/internal/cli"
)

var outlineCmd = &cobra.Command{
	Use:   "outline <text-file>",
	Short: "Print the article/paragraph/item outline of an extracted text",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := loadManager(); err != nil {
			return err
		}
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read text file: %w", err)
		}
		return cli.Output(clause.Outline(string(data)))
	},
}

func init() {
	rootCmd.AddCommand(outlineCmd)
}
