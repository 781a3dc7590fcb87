package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/treedepth/pkg/pipeline"
)

// inputOpts holds the flags shared by every command that reads packages.
type inputOpts struct {
	indexFile string // TOML index instead of an archive directory
	workers   int    // concurrent archive parsers
	strict    bool   // NuGet identifier rules
	noCache   bool   // disable the archive record cache
	refresh   bool   // re-parse every archive
}

func (o *inputOpts) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.indexFile, "index", "i", "", "read a TOML index instead of an archive directory")
	cmd.Flags().IntVarP(&o.workers, "workers", "w", 0, "archives parsed concurrently (default: number of CPUs)")
	cmd.Flags().BoolVar(&o.strict, "strict", false, "validate identifiers with NuGet rules")
	cmd.Flags().BoolVar(&o.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&o.refresh, "refresh", false, "ignore cached archive records")
}

// pipelineOptions resolves flags, environment and config into run options.
// The package directory comes from the positional argument, then the config.
func (c *CLI) pipelineOptions(cmd *cobra.Command, args []string, o inputOpts) pipeline.Options {
	opts := pipeline.Options{
		IndexFile: o.indexFile,
		Workers:   o.workers,
		StrictIDs: o.strict,
		Refresh:   o.refresh,
		Logger:    loggerFromContext(cmd.Context()),
	}
	if !cmd.Flags().Changed("workers") {
		opts.Workers = c.config.Workers
	}
	if !cmd.Flags().Changed("strict") {
		opts.StrictIDs = c.config.StrictIDs
	}
	if opts.IndexFile == "" {
		if len(args) > 0 {
			opts.Dir = args[0]
		} else {
			opts.Dir = c.config.Dir
		}
	}
	return opts
}
