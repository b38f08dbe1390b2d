package main

import (
	"github.com/spf13/cobra"
)

// options holds the flags shared by the run commands.
type options struct {
	configPath string
	envFile    string
	output     string
	sources    string
	workers    int
	json       bool
	verbose    bool
}

func newRootCmd() *cobra.Command {
	o := &options{}
	root := &cobra.Command{
		Use:   "gymtap",
		Short: "Find gyms across listing providers and link duplicate records",
		Long: `gymtap searches Yelp, Google Places and Google Maps around ZIP codes,
metro areas or a coordinate grid, links listings of the same gym across
providers and removes duplicates found by overlapping regions.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&o.configPath, "config", "", "TOML config file")
	pf.StringVar(&o.envFile, "env", "", ".env file with API keys (default: ./.env if present)")
	pf.StringVar(&o.output, "output", "", "directory for the session .db and .log files (default: log_dir from config)")
	pf.StringVar(&o.sources, "sources", "", "comma-separated sources: yelp,places,gmaps (default: from config)")
	pf.IntVar(&o.workers, "workers", 0, "regions searched concurrently (default: from config)")
	pf.BoolVar(&o.json, "json", false, "write the aggregate result as JSON to stdout")
	pf.BoolVarP(&o.verbose, "verbose", "v", false, "log progress to stderr")

	root.AddCommand(
		newZipCmd(o),
		newBatchCmd(o),
		newMetroCmd(o),
		newGridCmd(o),
		newExportCmd(),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("gymtap %s\n", version)
		},
	}
}
