package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	dircachededup "github.com/mattkeenan/dircachededup/pkg"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "dcdedup: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "dcdedup [config]",
		Short: "dcdedup - remove duplicate files across directories, keeping the newest copy",
		Long: `dcdedup indexes the top-level files of every directory listed in the
configuration, keeps a results.json index in each of them, and deletes every
file whose content fingerprint already exists elsewhere in the set, keeping
the most recently modified copy.

The configuration defaults to ./config.json:

  {
    "dirs": ["/srv/inbox", "/srv/archive"]
  }

Files ending in .ini are read in INI form ([dedup] dir = ...).`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath := dircachededup.DefaultConfig
			if len(args) == 1 {
				configPath = args[0]
			}

			dircachededup.SetOutput(cmd.OutOrStdout(), cmd.ErrOrStderr())

			report, err := dircachededup.RunFile(configPath)
			if err != nil {
				return err
			}

			report.WriteSummary(cmd.ErrOrStderr())
			return nil
		},
	}
	root.AddCommand(newStatusCmd())
	return root
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status [config]",
		Short: "Show files whose index entries are missing or out of date",
		Long: `status compares each configured directory with its results.json using
size and modification time only. Nothing is hashed, deleted or rewritten.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath := dircachededup.DefaultConfig
			if len(args) == 1 {
				configPath = args[0]
			}

			dircachededup.SetOutput(cmd.OutOrStdout(), cmd.ErrOrStderr())

			cfg, err := dircachededup.LoadConfig(configPath)
			if err != nil {
				return err
			}
			dircachededup.ApplyLogging(cfg)

			opts, err := cfg.ScanOptions()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, dir := range cfg.Dirs {
				status, err := dircachededup.NewDirectoryCache(dir, opts).Status()
				if err != nil {
					dircachededup.Errorf("%v", err)
					continue
				}
				for _, path := range status.Modified {
					fmt.Fprintf(out, "M %s\n", path)
				}
				for _, path := range status.Added {
					fmt.Fprintf(out, "A %s\n", path)
				}
				for _, path := range status.Deleted {
					fmt.Fprintf(out, "D %s\n", path)
				}
			}
			return nil
		},
	}
}
