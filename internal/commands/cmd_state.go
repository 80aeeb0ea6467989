package commands

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/casekit/internal/printer"
)

type StateCmd struct {
	flags *Flags
	json  bool
}

// NewStateCmd creates a new state command
func NewStateCmd(flags *Flags) *StateCmd {
	return &StateCmd{flags: flags}
}

// Register adds the state command to the application
func (cmd *StateCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "state",
		Usage: "Inspect or reset the persisted selection",
		Description: `The interactive converter remembers the selected transformation and its
options between runs. These commands read and clear that state.`,
		Commands: []*cli.Command{
			{
				Name:      "show",
				Usage:     "Print the persisted selection",
				UsageText: "casekit state show [--json]",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:        "json",
						Usage:       "output as JSON",
						Destination: &cmd.json,
					},
				},
				Action: cmd.runShow,
			},
			{
				Name:      "reset",
				Usage:     "Forget the persisted selection",
				UsageText: "casekit state reset",
				Action:    cmd.runReset,
			},
		},
	})

	return app
}

func (cmd *StateCmd) runShow(ctx context.Context, c *cli.Command) error {
	snap, err := cmd.flags.Service.Selection(ctx)
	if err != nil {
		return err
	}

	if cmd.json {
		enc := json.NewEncoder(c.Root().Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	}

	keys := make([]string, 0, len(snap.Options))
	for k := range snap.Options {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := [][2]string{
		{"backend", cmd.flags.Config.State.Backend},
		{"selected", snap.Selected},
	}
	for _, k := range keys {
		pairs = append(pairs, [2]string{"option " + k, snap.Options[k].String()})
	}
	printer.New(c.Root().Writer).Fields(pairs)

	return nil
}

func (cmd *StateCmd) runReset(ctx context.Context, _ *cli.Command) error {
	if err := cmd.flags.Service.ResetSelection(ctx); err != nil {
		return err
	}
	printer.Ctx(ctx).Successf("Selection reset to %s", cmd.flags.Config.DefaultTransformation)
	return nil
}
