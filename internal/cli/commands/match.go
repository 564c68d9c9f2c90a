package commands

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"

	"github.com/google/uuid"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/sqlrewrite/internal/config"
	"github.com/leapstack-labs/sqlrewrite/pkg/schema"
)

// MatchOptions holds options for the match command.
type MatchOptions struct {
	Candidates string
	QueryType  string
	DataSets   []int64
}

// CandidateFile is the input of the match command. Each scanner group is
// merged in order, as if it came from a separate upstream scanner.
type CandidateFile struct {
	Query    string           `yaml:"query"`
	Scanners []CandidateGroup `yaml:"scanners"`
}

// CandidateGroup is the output of one scanner.
type CandidateGroup struct {
	Name       string             `yaml:"name"`
	Candidates []schema.Candidate `yaml:"candidates"`
}

// MatchReport is the JSON output of the match command.
type MatchReport struct {
	RunID     string                   `json:"run_id"`
	Query     string                   `json:"query,omitempty"`
	QueryType schema.QueryDataType     `json:"query_type"`
	Matches   map[int64][]schema.Match `json:"matches"`
}

// NewMatchCommand creates the match command.
func NewMatchCommand() *cobra.Command {
	opts := &MatchOptions{}

	cmd := &cobra.Command{
		Use:   "match [QUERY]",
		Short: "Deduplicate and filter schema element matches",
		Long: `Merge the schema element candidates proposed by upstream scanners.

Candidates are read from a YAML or JSON file grouped by scanner. Duplicates
of the same element keep the most similar match, and the result is filtered
by the query data type.`,
		Example: `  sqlrewrite match --candidates candidates.yaml
  sqlrewrite match "pv by city" --candidates candidates.json --query-type metric -o json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMatch(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Candidates, "candidates", "c", "", "YAML or JSON file of scanner candidates")
	cmd.Flags().StringVarP(&opts.QueryType, "query-type", "q", "", "Query data type: all, tag, metric, dimension")
	cmd.Flags().Int64SliceVar(&opts.DataSets, "data-set", nil, "Only report these data set ids")
	_ = cmd.MarkFlagRequired("candidates")
	_ = cmd.RegisterFlagCompletionFunc("query-type", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"all", "tag", "metric", "dimension"}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runMatch(cmd *cobra.Command, args []string, opts *MatchOptions) error {
	c := NewCommandContext(cmd)

	q, err := schema.ParseQueryDataType(opts.QueryType)
	if err != nil {
		return err
	}
	file, err := loadCandidates(opts.Candidates)
	if err != nil {
		return err
	}
	query := file.Query
	if len(args) > 0 {
		query = args[0]
	}

	runID := uuid.NewString()
	logger := c.Logger.With("run_id", runID)

	scanners := make([]schema.Scanner, len(file.Scanners))
	for i, g := range file.Scanners {
		name := g.Name
		if name == "" {
			name = "scanner-" + strconv.Itoa(i+1)
		}
		scanners[i] = schema.Named(name, schema.StaticScanner(g.Candidates))
	}

	info := schema.NewMapInfo()
	if err := schema.NewMapper(logger, scanners...).Map(cmd.Context(), query, q, info); err != nil {
		return err
	}

	report := MatchReport{RunID: runID, Query: query, QueryType: q, Matches: make(map[int64][]schema.Match)}
	for _, id := range selectDataSets(info.DataSetIDs(), opts.DataSets) {
		report.Matches[id] = info.Matches(id)
	}

	if c.Cfg.Output == config.OutputJSON {
		return renderJSON(cmd.OutOrStdout(), report)
	}
	renderMatchTable(cmd.OutOrStdout(), report)
	return nil
}

func loadCandidates(path string) (*CandidateFile, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is supplied by the user
	if err != nil {
		return nil, fmt.Errorf("failed to read candidates: %w", err)
	}
	// JSON documents are valid YAML.
	var file CandidateFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%s: invalid candidates: %w", path, err)
	}
	return &file, nil
}

// selectDataSets keeps the ids listed in only, or all ids when only is empty.
func selectDataSets(ids, only []int64) []int64 {
	if len(only) == 0 {
		return ids
	}
	want := make(map[int64]bool, len(only))
	for _, id := range only {
		want[id] = true
	}
	var out []int64
	for _, id := range ids {
		if want[id] {
			out = append(out, id)
		}
	}
	return out
}

func renderMatchTable(w io.Writer, report MatchReport) {
	rows := 0
	for _, list := range report.Matches {
		rows += len(list)
	}
	if rows == 0 {
		_, _ = fmt.Fprintln(w, "(0 matches)")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Data Set", "Type", "ID", "Name", "Biz Name", "Word", "Detect Word", "Similarity", "Frequency"})

	for _, id := range sortedKeys(report.Matches) {
		for _, m := range report.Matches[id] {
			t.AppendRow(table.Row{
				id,
				m.Element.Type,
				m.Element.ID,
				m.Element.Name,
				m.Element.BizName,
				m.Word,
				m.DetectWord,
				strconv.FormatFloat(m.Similarity, 'f', 2, 64),
				m.Frequency,
			})
		}
	}
	t.Render()
	_, _ = fmt.Fprintf(w, "(%d matches)\n", rows)
}

func sortedKeys(m map[int64][]schema.Match) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
