package main

import (
	"os"

	"github.com/go-arcade/qaboard/pkg/version"
	"github.com/spf13/cobra"
)

/**
 * @author: gagral.x@gmail.com
 * @time: 2024/9/4 19:51
 * @file: main.go
 * @description: cli program
 */

var (
	configFile string
	output     string
)

var rootCmd = &cobra.Command{
	Use:          "qaboard-cli",
	Short:        "qaboard cli is a command line tool",
	Long:         "qaboard cli inspects a running server and the local store of a qaboard installation",
	SilenceUsage: true,
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "conf", "c", "conf.d/config.toml", "conf file path")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "json", "output format: json | yaml")

	rootCmd.AddCommand(version.VersionCmd)
	rootCmd.AddCommand(statusCmd())
	rootCmd.AddCommand(reconstructCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(clearLocalCmd())
	rootCmd.AddCommand(configCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
