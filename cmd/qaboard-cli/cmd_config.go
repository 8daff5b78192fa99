package main

import (
	"fmt"

	"github.com/go-arcade/qaboard/internal/engine/config"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
)

// configCmd prints the effective configuration, defaults applied.
func configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as TOML",
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := config.LoadConfigFile(configFile)
			if err != nil {
				return err
			}
			// 不输出密钥
			conf.Database.MySQL.Password = ""
			conf.Database.ClickHouse.Password = ""
			conf.Redis.Password = ""
			conf.Redis.SentinelPassword = ""
			conf.Storage.SecretKey = ""

			b, err := toml.Marshal(conf)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), string(b))
			return err
		},
	}
}
