package commands

import (
	"context"
	"encoding/json"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/casekit/internal/commands/doctor"
	"github.com/hay-kot/casekit/internal/printer"
)

type DoctorCmd struct {
	flags *Flags
	json  bool
}

func NewDoctorCmd(flags *Flags) *DoctorCmd {
	return &DoctorCmd{flags: flags}
}

func (cmd *DoctorCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:        "doctor",
		Usage:       "Check the config, state store and registry",
		UsageText:   "casekit doctor [--json]",
		Description: "Loads the configuration, round-trips a value through the state store and runs the default transformation.",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "print results as JSON",
				Destination: &cmd.json,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *DoctorCmd) checks() []doctor.Check {
	cfg := cmd.flags.Config
	svc := cmd.flags.Service

	return []doctor.Check{
		doctor.NewConfigCheck(cfg, cmd.flags.ConfigPath),
		doctor.NewStoreCheck(svc.Store(), cfg.State.Backend),
		doctor.NewRegistryCheck(svc.Registry(), cfg),
	}
}

func (cmd *DoctorCmd) run(ctx context.Context, c *cli.Command) error {
	results := doctor.RunAll(ctx, cmd.checks())
	counts := doctor.Summary(results)

	if cmd.json {
		enc := json.NewEncoder(c.Root().Writer)
		enc.SetIndent("", "  ")
		err := enc.Encode(struct {
			Healthy bool            `json:"healthy"`
			Summary doctor.Counts   `json:"summary"`
			Checks  []doctor.Result `json:"checks"`
		}{counts.Healthy(), counts, results})
		if err != nil {
			return err
		}
	} else {
		printResults(printer.Ctx(ctx), results)
		printer.Ctx(ctx).Printf("Summary: %s", counts)
	}

	if !counts.Healthy() {
		return cli.Exit("", 1)
	}
	return nil
}

func printResults(p *printer.Printer, results []doctor.Result) {
	for _, result := range results {
		p.Section(result.Name)
		for _, item := range result.Items {
			switch item.Status {
			case doctor.StatusPass:
				p.CheckItem(item.Label, item.Detail)
			case doctor.StatusWarn:
				p.WarnItem(item.Label, item.Detail)
			default:
				p.FailItem(item.Label, item.Detail)
			}
		}
		p.Printf("")
	}
}
