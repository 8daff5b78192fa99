package main

import (
	"time"

	"github.com/go-arcade/qaboard/internal/engine/syncer"
	"github.com/go-arcade/qaboard/pkg/http"
	"github.com/spf13/cobra"
)

func statusCmd() *cobra.Command {
	var (
		server    string
		timeout   time.Duration
		reconnect bool
	)
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the sync status of a running server",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := http.NewClient(server, timeout)
			if reconnect {
				if err := client.Post(cmd.Context(), "/api/v1/reconnect", nil, nil); err != nil {
					return err
				}
			}
			var st syncer.Status
			if err := client.Get(cmd.Context(), "/api/v1/status", &st); err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), output, st)
		},
	}
	cmd.Flags().StringVarP(&server, "server", "s", "http://127.0.0.1:8080", "server base url")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "request timeout")
	cmd.Flags().BoolVar(&reconnect, "reconnect", false, "trigger a reconnect before reading the status")
	return cmd
}
