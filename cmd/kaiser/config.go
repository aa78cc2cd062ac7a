package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/64/kaiser/internal/config"
)

func (a *app) configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or create the configuration file",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(a.configShowCmd(), a.configInitCmd())
	return cmd
}

// path returns the configuration file in use.
func (a *app) configFile() string {
	if a.configPath != "" {
		return a.configPath
	}
	return config.ConfigPath()
}

func (a *app) configShowCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration, after environment overrides",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			return config.Encode(a.stdout, a.cfg, "."+format)
		},
	}
	cmd.Flags().StringVar(&format, "format", "toml", "output format: toml, json or yaml")
	return cmd
}

func (a *app) configInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration unless the file exists",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.configFile()
			_, created, err := config.LoadOrCreate(path)
			if err != nil {
				return err
			}
			if created {
				fmt.Fprintf(a.stdout, "Wrote default configuration to %s\n", path)
			} else {
				fmt.Fprintf(a.stdout, "Configuration already exists at %s\n", path)
			}
			return nil
		},
	}
}
