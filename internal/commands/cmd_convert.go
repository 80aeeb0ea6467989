package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"text/template"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/hay-kot/casekit/internal/converter"
	"github.com/hay-kot/casekit/internal/core/transform"
	"github.com/hay-kot/casekit/internal/integration/watch"
	"github.com/hay-kot/casekit/pkg/tmpl"
)

type ConvertCmd struct {
	flags          *Flags
	transformation string
	options        []string
	file           string
	format         string
	copyOut        bool
	watch          bool
}

// NewConvertCmd creates a new convert command
func NewConvertCmd(flags *Flags) *ConvertCmd {
	return &ConvertCmd{flags: flags}
}

// Register adds the convert command to the application
func (cmd *ConvertCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "convert",
		Usage:     "Transform text once and print the result",
		UsageText: "casekit convert [-t name] [-o key=value]... [--copy] [--watch] [text | -f file]",
		Description: `Applies a transformation to text given as arguments, read from a file,
or piped on stdin.

Without -t the persisted selection from the interactive converter is used,
but it is never changed by this command.

--format renders the result through a Go template. The template receives
the session state ({{.Input}}, {{.Output}}, {{.Selected}}, {{.Stats}}) and
a 'transform' function: {{ transform "snake-case" .Input }}.

--watch requires -f and re-runs the transformation each time the file
changes until interrupted.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "transformation",
				Aliases:     []string{"t"},
				Usage:       "transformation name (see 'casekit list')",
				Destination: &cmd.transformation,
			},
			&cli.StringSliceFlag{
				Name:        "option",
				Aliases:     []string{"o"},
				Usage:       "transformation option as key=value (repeatable)",
				Destination: &cmd.options,
			},
			&cli.StringFlag{
				Name:        "file",
				Aliases:     []string{"f"},
				Usage:       "read input from file",
				Destination: &cmd.file,
			},
			&cli.StringFlag{
				Name:        "format",
				Usage:       "Go template for the output",
				Destination: &cmd.format,
			},
			&cli.BoolFlag{
				Name:        "copy",
				Usage:       "copy the result to the clipboard",
				Destination: &cmd.copyOut,
			},
			&cli.BoolFlag{
				Name:        "watch",
				Aliases:     []string{"w"},
				Usage:       "re-run when the input file changes",
				Destination: &cmd.watch,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *ConvertCmd) run(ctx context.Context, c *cli.Command) error {
	if cmd.watch && cmd.file == "" {
		return fmt.Errorf("--watch requires --file")
	}

	// The one-shot session never writes the persisted selection.
	sess := cmd.flags.Service.NewSession(ctx, converter.WithStateStore(nil))
	defer sess.Close()

	if err := cmd.selectTransformation(ctx, sess); err != nil {
		return err
	}

	if cmd.watch {
		return cmd.runWatch(ctx, c, sess)
	}

	if err := cmd.loadInput(ctx, c, sess); err != nil {
		return err
	}
	sess.Transform(ctx)

	return cmd.emit(ctx, c.Root().Writer, sess)
}

func (cmd *ConvertCmd) selectTransformation(ctx context.Context, sess *converter.Session) error {
	name := cmd.transformation
	var persisted transform.Options

	if name == "" {
		snap, err := cmd.flags.Service.Selection(ctx)
		if err != nil {
			return err
		}
		name, persisted = snap.Selected, snap.Options
	}

	m, ok := sess.Registry().Method(name)
	if !ok {
		return fmt.Errorf("%w: %s", transform.ErrNotFound, name)
	}
	opts, err := buildOptions(m, persisted, cmd.options)
	if err != nil {
		return err
	}

	sess.SetSelectedTransformation(ctx, m.Name)
	if err := sess.SetOptions(ctx, opts); err != nil {
		return fmt.Errorf("apply options: %w", err)
	}

	return nil
}

// buildOptions overlays key=value flags on the persisted options of m.
// Persisted values the method no longer accepts fall back to defaults.
func buildOptions(m transform.Method, persisted transform.Options, flags []string) (transform.Options, error) {
	opts := m.Resolve(persisted)
	for _, raw := range flags {
		key, value, found := strings.Cut(raw, "=")
		if !found {
			return nil, fmt.Errorf("option %q must be key=value", raw)
		}
		spec, ok := m.Option(key)
		if !ok {
			return nil, fmt.Errorf("%s has no option %q", m.Name, key)
		}
		v, err := spec.Parse(value)
		if err != nil {
			return nil, err
		}
		opts[key] = v
	}
	return opts, nil
}

func (cmd *ConvertCmd) loadInput(ctx context.Context, c *cli.Command, sess *converter.Session) error {
	switch {
	case c.Args().Len() > 0:
		sess.SetInputText(ctx, strings.Join(c.Args().Slice(), " "))
	case cmd.file != "":
		sess.LoadPath(ctx, cmd.file)
	case !term.IsTerminal(int(os.Stdin.Fd())):
		sess.LoadFile(ctx, os.Stdin)
	default:
		return fmt.Errorf("no input provided (stdin is a terminal); pass text, use -f, or pipe input")
	}

	if msg := sess.Snapshot().Error; msg != "" {
		return errors.New(msg)
	}
	return nil
}

func (cmd *ConvertCmd) runWatch(ctx context.Context, c *cli.Command, sess *converter.Session) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	out := c.Root().Writer
	w := watch.New(cmd.file, watch.DefaultSettle, log.Logger)

	onChange := func(text string) {
		sess.SetInputText(ctx, text)
		sess.Transform(ctx)
		if err := cmd.emit(ctx, out, sess); err != nil {
			log.Warn().Err(err).Str("file", cmd.file).Msg("convert failed")
		}
	}
	onError := func(err error) {
		log.Warn().Err(err).Str("file", cmd.file).Msg("reload failed")
	}

	err := w.Run(ctx, onChange, onError)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// emit writes the session result and copies it when requested.
func (cmd *ConvertCmd) emit(ctx context.Context, out io.Writer, sess *converter.Session) error {
	st := sess.Snapshot()
	if st.Error != "" {
		return errors.New(st.Error)
	}

	text := st.Output
	if cmd.format != "" {
		rendered, err := tmpl.Render(cmd.format, st, cmd.templateFuncs(ctx, sess.Registry()))
		if err != nil {
			return fmt.Errorf("render output: %w", err)
		}
		text = rendered
	}

	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	if _, err := io.WriteString(out, text); err != nil {
		return err
	}

	if cmd.copyOut {
		sess.CopyOutput(ctx)
		if msg := sess.Snapshot().Error; msg != "" {
			return errors.New(msg)
		}
	}

	return nil
}

func (cmd *ConvertCmd) templateFuncs(ctx context.Context, registry transform.Registry) template.FuncMap {
	return template.FuncMap{
		"transform": func(name, text string) (string, error) {
			m, ok := registry.Method(name)
			if !ok {
				return "", fmt.Errorf("%w: %s", transform.ErrNotFound, name)
			}
			return registry.Transform(ctx, name, text, m.Defaults())
		},
	}
}
