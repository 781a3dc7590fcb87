package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/treedepth/pkg/pipeline"
)

// indexCommand creates the index command.
func (c *CLI) indexCommand() *cobra.Command {
	var (
		input  inputOpts
		output string
	)

	cmd := &cobra.Command{
		Use:   "index [dir]",
		Short: "Write the dependency index of a package directory as TOML",
		Long: `Write the dependency index of a package directory as TOML.

Archives are scanned and de-duplicated exactly as for 'analyze'; when several
archives declare the same package id, the first one in file-name order wins.
The resulting file can be passed back with 'analyze --index'.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runIndex(cmd.Context(), c.pipelineOptions(cmd, args, input), input.noCache, output)
		},
	}

	input.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")

	return cmd
}

func (c *CLI) runIndex(ctx context.Context, opts pipeline.Options, noCache bool, output string) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(opts.Logger)
	idx, scanned, err := runner.LoadIndex(ctx, opts)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Indexed %d packages", idx.Len()))

	var w io.Writer = c.Out
	if output != "" {
		file, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("create %s: %w", output, err)
		}
		defer file.Close()
		w = file
	}
	if err := idx.Encode(w); err != nil {
		return fmt.Errorf("write index: %w", err)
	}

	if output == "" {
		return nil
	}
	c.printSuccess("Wrote index of %d packages", idx.Len())
	c.printFile(output)
	if dupes := idx.Duplicates(); len(dupes) > 0 {
		c.printDetail("%d duplicate package ids skipped", len(dupes))
	}
	if scanned != nil && len(scanned.Failures) > 0 {
		c.printWarning("%d broken packages skipped", len(scanned.Failures))
	}
	return nil
}
