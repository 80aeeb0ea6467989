package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hay-kot/criterio"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/hay-kot/casekit/internal/core/config"
	"github.com/hay-kot/casekit/internal/printer"
)

// ConfigCmd groups the config subcommands.
type ConfigCmd struct {
	flags *Flags
	json  bool
}

func NewConfigCmd(flags *Flags) *ConfigCmd {
	return &ConfigCmd{flags: flags}
}

func (cmd *ConfigCmd) Register(app *cli.Command) *cli.Command {
	jsonFlag := &cli.BoolFlag{
		Name:        "json",
		Usage:       "print as JSON",
		Destination: &cmd.json,
	}

	app.Commands = append(app.Commands, &cli.Command{
		Name:  "config",
		Usage: "Inspect the configuration",
		Commands: []*cli.Command{
			{
				Name:        "validate",
				Usage:       "Validate the configuration file",
				UsageText:   "casekit config validate [--json]",
				Description: "Checks durations, preview slots, keybindings, the registry URL and the state backend.",
				Flags:       []cli.Flag{jsonFlag},
				Action:      cmd.runValidate,
			},
			{
				Name:      "show",
				Usage:     "Print the effective configuration as YAML",
				UsageText: "casekit config show",
				Action:    cmd.runShow,
			},
		},
	})
	return app
}

// validationReport is the outcome of config validate.
type validationReport struct {
	Valid    bool                       `json:"valid"`
	Errors   []reportError              `json:"errors,omitempty"`
	Warnings []config.ValidationWarning `json:"warnings,omitempty"`
}

type reportError struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func newValidationReport(err error, warnings []config.ValidationWarning) validationReport {
	r := validationReport{Valid: err == nil, Warnings: warnings}
	if err == nil {
		return r
	}

	var fieldErrs criterio.FieldErrors
	if !errors.As(err, &fieldErrs) {
		r.Errors = []reportError{{Message: err.Error()}}
		return r
	}
	for _, fe := range fieldErrs {
		r.Errors = append(r.Errors, reportError{Field: fe.Field, Message: fe.Err.Error()})
	}
	return r
}

func (cmd *ConfigCmd) runValidate(ctx context.Context, c *cli.Command) error {
	cfg := cmd.flags.Config
	if cfg == nil {
		return fmt.Errorf("configuration not loaded")
	}

	report := newValidationReport(cfg.ValidateDeep(cmd.flags.ConfigPath), cfg.Warnings())

	if cmd.json {
		enc := json.NewEncoder(c.Root().Writer)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
	} else {
		printReport(printer.Ctx(ctx), report)
	}

	if !report.Valid {
		return cli.Exit("", 1)
	}
	return nil
}

func printReport(p *printer.Printer, r validationReport) {
	if len(r.Errors) > 0 {
		p.Section("Errors")
		for _, e := range r.Errors {
			if e.Field == "" {
				p.FailItem(e.Message, "")
				continue
			}
			p.FailItem(e.Field, e.Message)
		}
		p.Printf("")
	}

	if len(r.Warnings) > 0 {
		p.Section("Warnings")
		for _, w := range r.Warnings {
			label := w.Category
			if w.Item != "" {
				label += " " + w.Item
			}
			p.WarnItem(label, w.Message)
		}
		p.Printf("")
	}

	switch {
	case !r.Valid:
		p.Errorf("%d error(s), %d warning(s)", len(r.Errors), len(r.Warnings))
	case len(r.Warnings) > 0:
		p.Successf("Configuration is valid (%d warning(s))", len(r.Warnings))
	default:
		p.Successf("Configuration is valid")
	}
}

func (cmd *ConfigCmd) runShow(_ context.Context, c *cli.Command) error {
	cfg := cmd.flags.Config
	if cfg == nil {
		return fmt.Errorf("configuration not loaded")
	}

	shown := *cfg
	if shown.State.Redis.Password != "" {
		shown.State.Redis.Password = "********"
	}

	enc := yaml.NewEncoder(c.Root().Writer)
	enc.SetIndent(2)
	if err := enc.Encode(shown); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return enc.Close()
}
