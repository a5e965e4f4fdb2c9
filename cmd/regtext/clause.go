package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/policyops/regtext/internal/clause"
	"github.com/policyops/regtext/internal/cli"
	"github.com/policyops/regtext/internal/extract"
)

var (
	clauseStatePath string
	clauseTitle     string
	clauseRef       string
)

// clauseAnswer is one resolved citation in the command output.
type clauseAnswer struct {
	Title  string         `json:"title" yaml:"title"`
	Clause string         `json:"clause,omitempty" yaml:"clause,omitempty"`
	Code   string         `json:"code,omitempty" yaml:"code,omitempty"`
	Match  *extract.Match `json:"match,omitempty" yaml:"match,omitempty"`
	Text   string         `json:"text,omitempty" yaml:"text,omitempty"`
}

var clauseCmd = &cobra.Command{
	Use:   "clause [citation]",
	Short: "Resolve a clause citation against a state file",
	Long: `Clause locates a policy by title and slices the referenced article,
paragraph, or item out of its best available document.

The citation may be a compound key such as
《中华人民共和国反洗钱法》第三条第一款（二）项, possibly naming several
clauses, or the title and reference can be passed separately with
--title and --ref.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := loadManager(); err != nil {
			return err
		}
		state, stateDir, err := loadState(clauseStatePath)
		if err != nil {
			return err
		}
		lookup := extract.NewLookup(state, stateDir)

		var queries []clause.Query
		switch {
		case len(args) == 1:
			queries = clause.ParseKey(args[0])
			if len(queries) == 0 {
				return fmt.Errorf("could not parse citation %q", args[0])
			}
		case clauseTitle != "":
			queries = []clause.Query{{Title: clauseTitle, Clause: clauseRef}}
		default:
			return fmt.Errorf("provide a citation argument or --title")
		}

		answers := make([]clauseAnswer, 0, len(queries))
		for _, query := range queries {
			match, code := lookup.FindClause(query.Title, query.Clause)
			answer := clauseAnswer{
				Title:  query.Title,
				Clause: query.Clause,
				Code:   code,
				Match:  match,
			}
			if match != nil && match.Result != nil {
				answer.Text = strings.TrimSpace(match.Result.BestText())
			}
			answers = append(answers, answer)
		}
		return cli.Output(answers)
	},
}

var titlesCmd = &cobra.Command{
	Use:   "titles",
	Short: "List the policy titles indexed from a state file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := loadManager(); err != nil {
			return err
		}
		state, stateDir, err := loadState(clauseStatePath)
		if err != nil {
			return err
		}
		lookup := extract.NewLookup(state, stateDir)
		return cli.Output(lookup.Titles())
	},
}

func init() {
	clauseCmd.Flags().StringVar(&clauseStatePath, "state", "", "crawler state JSON file (required)")
	clauseCmd.Flags().StringVar(&clauseTitle, "title", "", "policy title to look up")
	clauseCmd.Flags().StringVar(&clauseRef, "ref", "", "clause reference, e.g. 第三条第一款")
	_ = clauseCmd.MarkFlagRequired("state")

	titlesCmd.Flags().StringVar(&clauseStatePath, "state", "", "crawler state JSON file (required)")
	_ = titlesCmd.MarkFlagRequired("state")

	rootCmd.AddCommand(clauseCmd)
	rootCmd.AddCommand(titlesCmd)
}
