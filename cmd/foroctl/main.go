package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/itchan-dev/foro/internal/setup"
	"github.com/itchan-dev/foro/internal/store"
	"github.com/itchan-dev/foro/shared/config"
	"github.com/itchan-dev/foro/shared/logger"
)

var (
	configFlag string
	jsonFlag   bool
	rootCmd    = &cobra.Command{
		Use:           "foroctl",
		Short:         "Inspect the forum state held in the configured storage",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// openStore loads the forum state read-only; nothing here commits.
func openStore(ctx context.Context) (*store.Store, func(), error) {
	cfg, err := config.Load(configFlag)
	if err != nil {
		return nil, nil, err
	}
	logger.InitializeWithWriter(os.Stderr, cfg.Log.Level, false)

	backend, st, err := setup.LoadStore(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return st, func() { backend.Close() }, nil
}

func withStore(run func(cmd *cobra.Command, st *store.Store, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		st, closeFn, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer closeFn()
		return run(cmd, st, args)
	}
}

func main() {
	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "config/foro.yaml", "path to config file, empty for defaults")
	rootCmd.PersistentFlags().BoolVar(&jsonFlag, "json", false, "print JSON instead of tables")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "users",
		Short: "List registered users",
		Args:  cobra.NoArgs,
		RunE: withStore(func(cmd *cobra.Command, st *store.Store, _ []string) error {
			return printUsers(cmd.OutOrStdout(), st, jsonFlag)
		}),
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "topics",
		Short: "List topics, newest first",
		Args:  cobra.NoArgs,
		RunE: withStore(func(cmd *cobra.Command, st *store.Store, _ []string) error {
			return printTopics(cmd.OutOrStdout(), st, jsonFlag)
		}),
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "topic TOPIC_ID",
		Short: "Show one topic with its comments",
		Args:  cobra.ExactArgs(1),
		RunE: withStore(func(cmd *cobra.Command, st *store.Store, args []string) error {
			return printTopic(cmd.OutOrStdout(), st, args[0], jsonFlag)
		}),
	})

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
