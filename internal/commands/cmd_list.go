package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/casekit/internal/casekit"
	"github.com/hay-kot/casekit/internal/core/transform"
	"github.com/hay-kot/casekit/internal/printer"
)

type ListCmd struct {
	flags  *Flags
	match  string
	search string
	json   bool
}

// NewListCmd creates a new list command
func NewListCmd(flags *Flags) *ListCmd {
	return &ListCmd{flags: flags}
}

// Register adds the list command to the application
func (cmd *ListCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "list",
		Aliases:   []string{"ls"},
		Usage:     "List available transformations",
		UsageText: "casekit list [--match glob] [--search query] [--json]",
		Description: `Displays every transformation grouped by category.

--match filters by glob against the name or "category/name", for example
'case/*' or '*-case'. --search ranks methods by fuzzy match on name and label.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "match",
				Aliases:     []string{"m"},
				Usage:       "glob pattern matched against name or category/name",
				Destination: &cmd.match,
			},
			&cli.StringFlag{
				Name:        "search",
				Aliases:     []string{"s"},
				Usage:       "fuzzy search query",
				Destination: &cmd.search,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON",
				Destination: &cmd.json,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *ListCmd) run(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	methods, err := cmd.methods()
	if err != nil {
		return err
	}

	out := c.Root().Writer

	if cmd.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(methods)
	}

	if len(methods) == 0 {
		p.Infof("No transformations found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "CATEGORY\tNAME\tLABEL\tOPTIONS")

	for _, m := range methods {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", m.Category, m.Name, m.Label, optionSummary(m))
	}

	return w.Flush()
}

// methods applies the glob filter, then the fuzzy search. Search results
// keep their rank order; everything else stays grouped by category.
func (cmd *ListCmd) methods() ([]transform.Method, error) {
	methods := cmd.flags.Service.Registry().Methods()

	if cmd.match != "" {
		matched, err := casekit.MatchMethods(methods, cmd.match)
		if err != nil {
			return nil, err
		}
		methods = matched
	}

	if cmd.search != "" {
		methods = casekit.SearchMethods(methods, cmd.search)
	}

	return methods, nil
}

func optionSummary(m transform.Method) string {
	if len(m.Options) == 0 {
		return "-"
	}

	parts := make([]string, 0, len(m.Options))
	for _, spec := range m.Options {
		parts = append(parts, fmt.Sprintf("%s=%s", spec.Key, spec.Default))
	}
	return strings.Join(parts, " ")
}
