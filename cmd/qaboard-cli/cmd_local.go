package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-arcade/qaboard/internal/engine/config"
	"github.com/go-arcade/qaboard/internal/engine/history"
	"github.com/go-arcade/qaboard/internal/engine/service"
	"github.com/go-arcade/qaboard/internal/engine/store"
	"github.com/spf13/cobra"
)

// openLocal 打开配置中的本地存储，调用方负责关闭
func openLocal() (*store.LocalStore, func(), config.AppConfig, error) {
	conf, err := config.LoadConfigFile(configFile)
	if err != nil {
		return nil, nil, config.AppConfig{}, err
	}
	kv, err := store.NewKV(conf.Local, conf.Redis)
	if err != nil {
		return nil, nil, config.AppConfig{}, err
	}
	return store.NewLocalStore(kv), func() { _ = kv.Close() }, conf, nil
}

func reconstructCmd() *cobra.Command {
	var (
		teamId   int64
		teamName string
		start    string
		end      string
	)
	cmd := &cobra.Command{
		Use:   "reconstruct",
		Short: "Rebuild a team's verified state for a date range from the local log",
		RunE: func(cmd *cobra.Command, args []string) error {
			local, closeFn, conf, err := openLocal()
			if err != nil {
				return err
			}
			defer closeFn()

			opts, err := conf.History.Options()
			if err != nil {
				return err
			}
			from, err := time.ParseInLocation(time.DateOnly, start, opts.Location)
			if err != nil {
				return fmt.Errorf("invalid --start: %w", err)
			}
			to := from
			if end != "" {
				if to, err = time.ParseInLocation(time.DateOnly, end, opts.Location); err != nil {
					return fmt.Errorf("invalid --end: %w", err)
				}
			}

			team, ok := history.Reconstruct(local.GetVerifications(), teamId, teamName, from, to, opts)
			if !ok {
				return errors.New("no verifications for team in range")
			}
			return render(cmd.OutOrStdout(), output, team)
		},
	}
	cmd.Flags().Int64Var(&teamId, "team", 0, "team id")
	cmd.Flags().StringVar(&teamName, "name", "", "team name used in the label")
	cmd.Flags().StringVar(&start, "start", "", "first day, YYYY-MM-DD")
	cmd.Flags().StringVar(&end, "end", "", "last day, YYYY-MM-DD (defaults to --start)")
	_ = cmd.MarkFlagRequired("team")
	_ = cmd.MarkFlagRequired("start")
	return cmd
}

func exportCmd() *cobra.Command {
	var teamId int64
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a team from the local store",
		RunE: func(cmd *cobra.Command, args []string) error {
			local, closeFn, _, err := openLocal()
			if err != nil {
				return err
			}
			defer closeFn()

			for _, t := range local.GetTeams() {
				if t.Id != teamId {
					continue
				}
				return render(cmd.OutOrStdout(), output, service.TeamExport{
					Version:    service.ExportVersion,
					ExportDate: time.Now().UTC().Format(time.RFC3339Nano),
					Team:       &t,
				})
			}
			return fmt.Errorf("team %d not found in local store", teamId)
		},
	}
	cmd.Flags().Int64Var(&teamId, "team", 0, "team id")
	_ = cmd.MarkFlagRequired("team")
	return cmd
}

func clearLocalCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear-local",
		Short: "Remove teams and the verification log from the local store",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("refusing to clear the local store without --yes")
			}
			local, closeFn, _, err := openLocal()
			if err != nil {
				return err
			}
			defer closeFn()
			local.Clear()
			fmt.Fprintln(cmd.OutOrStdout(), "local store cleared")
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm")
	return cmd
}
