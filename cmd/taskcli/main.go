package main

import (
	"fmt"
	"os"

	"tasktracker/config"

	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	if err := newRootCmd(config.Load()).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type cliOptions struct {
	cfg     config.Config
	apiURL  string
	token   string
	timeout string
}

func newRootCmd(cfg config.Config) *cobra.Command {
	opts := &cliOptions{cfg: cfg}

	rootCmd := &cobra.Command{
		Use:           "taskcli",
		Short:         "Task Tracker command line client",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.apiURL, "api-url", cfg.APIURL, "Task service base URL")
	rootCmd.PersistentFlags().StringVar(&opts.token, "token", cfg.APIToken, "Bearer token for the task service")
	rootCmd.PersistentFlags().StringVar(&opts.timeout, "timeout", "10s", "HTTP request timeout")

	rootCmd.AddCommand(tuiCmd(opts))
	rootCmd.AddCommand(listCmd(opts))
	rootCmd.AddCommand(addCmd(opts))
	rootCmd.AddCommand(toggleCmd(opts))
	rootCmd.AddCommand(deleteCmd(opts))
	rootCmd.AddCommand(tokenCmd(opts))

	return rootCmd
}
