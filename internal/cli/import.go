package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/gmsas95/finbot/internal/batch"
)

// Importer is implemented by *app.App
type Importer interface {
	Import(ctx context.Context, cfg batch.Config, inputPath, outputPath string) (*batch.Result, error)
}

// ImportOptions are the parsed import flags
type ImportOptions struct {
	Input  string
	Output string
	Batch  batch.Config
}

// ParseImportArgs reads import flags. ok is false when help was requested.
func ParseImportArgs(args []string) (opts ImportOptions, ok bool, err error) {
	opts.Batch = batch.DefaultConfig()

	next := func(i int) (string, error) {
		if i+1 >= len(args) {
			return "", fmt.Errorf("missing value for %s", args[i])
		}
		return args[i+1], nil
	}

	for i := 0; i < len(args); i++ {
		var val string
		switch args[i] {
		case "-h", "--help":
			return opts, false, nil
		case "-i", "--input":
			if val, err = next(i); err != nil {
				return opts, false, err
			}
			opts.Input = val
			i++
		case "-o", "--output":
			if val, err = next(i); err != nil {
				return opts, false, err
			}
			opts.Output = val
			i++
		case "-c", "--concurrency", "--rpm":
			if val, err = next(i); err != nil {
				return opts, false, err
			}
			n, convErr := strconv.Atoi(val)
			if convErr != nil || n < 0 {
				return opts, false, fmt.Errorf("invalid value for %s: %q", args[i], val)
			}
			if args[i] == "--rpm" {
				opts.Batch.RPM = n
			} else {
				opts.Batch.MaxConcurrency = n
			}
			i++
		case "--owner":
			if val, err = next(i); err != nil {
				return opts, false, err
			}
			opts.Batch.DefaultOwner = val
			i++
		default:
			return opts, false, fmt.Errorf("unknown flag %s", args[i])
		}
	}

	if opts.Input == "" {
		return opts, false, fmt.Errorf("input file is required")
	}
	return opts, true, nil
}

func HandleImportCommand(ctx context.Context, out io.Writer, opts ImportOptions, imp Importer) error {
	if _, err := os.Stat(opts.Input); os.IsNotExist(err) {
		return fmt.Errorf("input file not found: %s", opts.Input)
	}

	fmt.Fprintf(out, "💰 Importing: %s\n", opts.Input)
	fmt.Fprintf(out, "   Workers: %d | RPM: %d\n\n", opts.Batch.MaxConcurrency, opts.Batch.RPM)

	result, err := imp.Import(ctx, opts.Batch, opts.Input, opts.Output)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, result.Summary())
	if opts.Output != "" {
		fmt.Fprintf(out, "✓ Results saved to: %s\n", opts.Output)
	}

	if result.Failed > 0 {
		fmt.Fprintln(out, "\nFailed items:")
		for _, item := range result.Items {
			if !item.Success {
				fmt.Fprintf(out, "  - %s: %s\n", item.ID, item.Error)
			}
		}
	}
	return nil
}
