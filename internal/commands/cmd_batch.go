package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/hay-kot/criterio"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/hay-kot/casekit/internal/core/transform"
	"github.com/hay-kot/casekit/internal/core/validate"
)

const (
	// StatusOK indicates the item was transformed.
	StatusOK = "ok"
	// StatusFailed indicates the transformation failed.
	StatusFailed = "failed"
	// StatusSkipped indicates the item was not attempted due to failure threshold.
	StatusSkipped = "skipped"

	// maxFailures is the number of failures before stopping batch processing.
	maxFailures = 3
)

// BatchInput is the JSON input schema for a batch of conversions.
type BatchInput struct {
	Items []BatchItem `json:"items"`
}

// Validate checks the batch input for errors using criterio.
func (b BatchInput) Validate() error {
	if len(b.Items) == 0 {
		return criterio.NewFieldErrors("items", fmt.Errorf("array is empty"))
	}

	var errs criterio.FieldErrorsBuilder
	seenIDs := make(map[string]bool)

	for i, item := range b.Items {
		field := fmt.Sprintf("items[%d]", i)

		if err := validate.MethodName(item.Transformation); err != nil {
			errs = errs.Append(field+".transformation", err)
			continue
		}

		if item.ID != "" {
			if seenIDs[item.ID] {
				errs = errs.Append(field+".id", fmt.Errorf("duplicate id %q", item.ID))
				continue
			}
			seenIDs[item.ID] = true
		}
	}

	return errs.ToError()
}

// BatchItem defines a single conversion.
type BatchItem struct {
	ID             string            `json:"id,omitempty"`
	Transformation string            `json:"transformation"`
	Text           string            `json:"text"`
	Options        map[string]string `json:"options,omitempty"`
}

// BatchResult is the output for a single conversion attempt.
type BatchResult struct {
	ID             string `json:"id,omitempty"`
	Transformation string `json:"transformation"`
	Output         string `json:"output,omitempty"`
	Status         string `json:"status"`
	Error          string `json:"error,omitempty"`
}

// BatchOutput is the JSON output schema.
type BatchOutput struct {
	Results []BatchResult `json:"results"`
}

// BatchErrorOutput is the JSON output for fatal errors.
type BatchErrorOutput struct {
	Error string `json:"error"`
}

type BatchCmd struct {
	flags *Flags
	file  string
}

func NewBatchCmd(flags *Flags) *BatchCmd {
	return &BatchCmd{flags: flags}
}

func (cmd *BatchCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "batch",
		Usage: "Run multiple conversions from JSON input",
		UsageText: `casekit batch [options]

Read from stdin:
  echo '{"items":[{"transformation":"snake-case","text":"Hello World"}]}' | casekit batch

Read from file:
  casekit batch -f items.json`,
		Description: `Runs every conversion in the input array in order.

Processing stops after 3 failures. Items not attempted are marked as skipped.

Input JSON schema:
  {
    "items": [
      {
        "id": "optional-id",
        "transformation": "snake-case",
        "text": "text to convert",
        "options": {"key": "value"}
      }
    ]
  }

Fields:
  id             - Optional. Echoed back in the result; must be unique.
  transformation - Required. Transformation name (see 'casekit list').
  text           - Text to convert.
  options        - Optional. Option values, parsed by the option's kind.

Output is JSON with one result per item.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "file",
				Aliases:     []string{"f"},
				Usage:       "path to JSON file (reads from stdin if not provided)",
				Destination: &cmd.file,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *BatchCmd) run(ctx context.Context, c *cli.Command) error {
	logger := log.With().Str("component", "batch").Logger()
	out := c.Root().Writer

	input, err := cmd.readInput()
	if err != nil {
		logger.Error().Err(err).Msg("failed to read input")
		return writeBatchError(out, fmt.Errorf("read input: %w", err))
	}

	if err := input.Validate(); err != nil {
		logger.Error().Err(err).Msg("input validation failed")
		return writeBatchError(out, fmt.Errorf("invalid input: %w", err))
	}

	output := runBatch(ctx, cmd.flags.Service.Registry(), cmd.flags.Config.TransformTimeout, input, logger)

	logger.Info().
		Int("total", len(input.Items)).
		Int("ok", countByStatus(output.Results, StatusOK)).
		Int("failed", countByStatus(output.Results, StatusFailed)).
		Int("skipped", countByStatus(output.Results, StatusSkipped)).
		Msg("batch processing complete")

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(output)
}

func (cmd *BatchCmd) readInput() (BatchInput, error) {
	var reader io.Reader

	if cmd.file != "" {
		f, err := os.Open(cmd.file)
		if err != nil {
			return BatchInput{}, fmt.Errorf("open file: %w", err)
		}
		defer func() { _ = f.Close() }()
		reader = f
	} else {
		if term.IsTerminal(int(os.Stdin.Fd())) {
			return BatchInput{}, fmt.Errorf("no input provided (stdin is a terminal); use -f flag or pipe JSON input")
		}
		reader = os.Stdin
	}

	var input BatchInput
	if err := json.NewDecoder(reader).Decode(&input); err != nil {
		return BatchInput{}, fmt.Errorf("decode JSON: %w", err)
	}

	return input, nil
}

// runBatch converts each item in order, skipping the rest once maxFailures
// items have failed.
func runBatch(ctx context.Context, registry transform.Registry, timeout time.Duration, input BatchInput, logger zerolog.Logger) BatchOutput {
	output := BatchOutput{Results: make([]BatchResult, 0, len(input.Items))}

	failures := 0
	for i, item := range input.Items {
		if failures >= maxFailures {
			logger.Warn().Int("index", i).Msg("skipping remaining items due to failure threshold")
			for _, rest := range input.Items[i:] {
				output.Results = append(output.Results, BatchResult{
					ID:             rest.ID,
					Transformation: rest.Transformation,
					Status:         StatusSkipped,
				})
			}
			break
		}

		result := convertItem(ctx, registry, timeout, item)
		output.Results = append(output.Results, result)

		if result.Status == StatusFailed {
			failures++
			logger.Error().Int("index", i).Str("error", result.Error).Msg("conversion failed")
		}
	}

	return output
}

func convertItem(ctx context.Context, registry transform.Registry, timeout time.Duration, item BatchItem) BatchResult {
	result := BatchResult{ID: item.ID, Transformation: item.Transformation, Status: StatusFailed}

	m, ok := registry.Method(item.Transformation)
	if !ok {
		result.Error = fmt.Sprintf("transformation %q not found", item.Transformation)
		return result
	}

	opts := m.Defaults()
	for key, raw := range item.Options {
		spec, ok := m.Option(key)
		if !ok {
			result.Error = fmt.Sprintf("%s has no option %q", m.Name, key)
			return result
		}
		v, err := spec.Parse(raw)
		if err != nil {
			result.Error = err.Error()
			return result
		}
		opts[key] = v
	}

	tctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	out, err := registry.Transform(tctx, m.Name, item.Text, opts)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	result.Output = out
	result.Status = StatusOK
	return result
}

func writeBatchError(w io.Writer, err error) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if encErr := enc.Encode(BatchErrorOutput{Error: err.Error()}); encErr != nil {
		fmt.Fprintf(os.Stderr, "error: %s (failed to write JSON: %v)\n", err, encErr)
	}
	return err
}

func countByStatus(results []BatchResult, status string) int {
	count := 0
	for _, r := range results {
		if r.Status == status {
			count++
		}
	}
	return count
}
