package commands

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/casekit/internal/converter"
	"github.com/hay-kot/casekit/internal/tui"
)

type TuiCmd struct {
	flags *Flags
	file  string
}

// NewTuiCmd creates a new tui command
func NewTuiCmd(flags *Flags) *TuiCmd {
	return &TuiCmd{
		flags: flags,
	}
}

// Flags returns the TUI-specific flags for registration on the root command
func (cmd *TuiCmd) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "file",
			Aliases:     []string{"f"},
			Usage:       "load a file as the initial input of the converter",
			Destination: &cmd.file,
		},
	}
}

// Register adds an explicit tui command alongside the default action
func (cmd *TuiCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "tui",
		Usage:     "Open the interactive converter",
		UsageText: "casekit tui [--file path]",
		Flags:     cmd.Flags(),
		Action:    cmd.run,
	})
	return app
}

// Run executes the TUI. Exported for use as default command.
func (cmd *TuiCmd) Run(ctx context.Context, c *cli.Command) error {
	return cmd.run(ctx, c)
}

func (cmd *TuiCmd) run(ctx context.Context, _ *cli.Command) error {
	sess := cmd.flags.Service.NewSession(ctx)
	defer sess.Close()

	m := tui.New(ctx, sess, cmd.flags.Config, tui.Options{
		Logger:      log.Logger,
		InitialFile: cmd.file,
	})
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	unsubscribe := sess.Subscribe(func(st converter.State) {
		p.Send(tui.StateMsg(st))
	})

	_, err := p.Run()

	unsubscribe()
	m.Close()

	if err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}
