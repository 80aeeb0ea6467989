package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/hay-kot/casekit/internal/converter"
	"github.com/hay-kot/casekit/internal/printer"
)

type PreviewCmd struct {
	flags *Flags
	slots []string
	json  bool
}

// NewPreviewCmd creates a new preview command
func NewPreviewCmd(flags *Flags) *PreviewCmd {
	return &PreviewCmd{flags: flags}
}

// Register adds the preview command to the application
func (cmd *PreviewCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "preview",
		Usage:     "Show the text in every preview slot",
		UsageText: "casekit preview [--slot name]... [--json] [text]",
		Description: `Runs the text through each configured preview slot and prints the
results side by side. Text is read from stdin when no argument is given.

--slot replaces the configured slots for this run.`,
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:        "slot",
				Usage:       "transformation to preview (repeatable)",
				Destination: &cmd.slots,
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

func (cmd *PreviewCmd) run(ctx context.Context, c *cli.Command) error {
	extra := []converter.Option{converter.WithStateStore(nil)}
	if len(cmd.slots) > 0 {
		extra = append(extra, converter.WithPreviews(cmd.slots, len(cmd.slots)))
	}

	sess := cmd.flags.Service.NewSession(ctx, extra...)
	defer sess.Close()

	switch {
	case c.Args().Len() > 0:
		sess.SetInputText(ctx, strings.Join(c.Args().Slice(), " "))
	case !term.IsTerminal(int(os.Stdin.Fd())):
		sess.LoadFile(ctx, os.Stdin)
	default:
		return fmt.Errorf("no input provided (stdin is a terminal); pass text or pipe input")
	}

	st := sess.Snapshot()
	if st.Error != "" {
		return errors.New(st.Error)
	}

	if cmd.json {
		enc := json.NewEncoder(c.Root().Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(st.Previews)
	}

	pairs := make([][2]string, 0, len(st.Previews))
	for _, slot := range st.Previews {
		pairs = append(pairs, [2]string{slot.Label, slot.Output})
	}
	printer.New(c.Root().Writer).Fields(pairs)

	return nil
}
