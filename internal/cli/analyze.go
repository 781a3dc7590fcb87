package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/treedepth/pkg/pipeline"
	"github.com/matzehuels/treedepth/pkg/report"
)

// analyzeCommand creates the analyze command.
func (c *CLI) analyzeCommand() *cobra.Command {
	var (
		input  inputOpts
		format string
		output string
		full   bool
	)

	cmd := &cobra.Command{
		Use:   "analyze [dir]",
		Short: "Report the deepest dependency chains",
		Long: `Report the deepest dependency chains of a package collection.

Every package that declares at least one dependency is expanded into a tree.
Shared dependencies appear once per path; cycles are cut where a package
would reappear among its own ancestors. The report lists the maximum depth,
every package at that depth, and its hierarchy from the bottom up.

The directory defaults to the "dir" config key or $TREEDEPTH_DIR.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("format") {
				format = c.config.Format
			}
			f, err := report.ParseFormat(format)
			if err != nil {
				return err
			}
			return c.runAnalyze(cmd.Context(), c.pipelineOptions(cmd, args, input), input.noCache, f, output, full)
		},
	}

	input.register(cmd)
	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format: text, json, dot, svg")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().BoolVar(&full, "full", false, "draw the whole unrolled tree (dot, svg)")

	return cmd
}

// runAnalyze executes the pipeline and writes the report.
func (c *CLI) runAnalyze(ctx context.Context, opts pipeline.Options, noCache bool, f report.Format, output string, full bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(opts.Logger)
	result, err := runner.Execute(ctx, opts)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Analyzed %d packages", result.Stats.Packages))

	var w io.Writer = c.Out
	if output != "" {
		file, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("create %s: %w", output, err)
		}
		defer file.Close()
		w = file
	}

	if err := writeReport(ctx, w, result.Report, f, full); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	if output != "" {
		c.printSuccess("Wrote %s report", f)
		c.printFile(output)
	}
	if f == report.FormatText {
		c.printSummary(result.Stats)
	}
	return nil
}

func writeReport(ctx context.Context, w io.Writer, r *report.Report, f report.Format, full bool) error {
	if !full || (f != report.FormatDOT && f != report.FormatSVG) {
		return r.Write(ctx, w, f)
	}
	dot := r.DOT(report.DOTOptions{Full: true})
	if f == report.FormatDOT {
		_, err := io.WriteString(w, dot)
		return err
	}
	svg, err := report.RenderSVG(ctx, dot)
	if err != nil {
		return err
	}
	_, err = w.Write(svg)
	return err
}
