package main

import (
	"github.com/example/revtrack/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newRootCmd() *cobra.Command {
	var (
		cfgFile string
		envFile string
	)

	rootCmd := &cobra.Command{
		Use:           "revtrack",
		Short:         "Spaced-repetition study tracker",
		Long:          "revtrack schedules reviews of studied subtopics at 1, 3, 7, 15 and 30 day intervals.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var envFiles []string
			if envFile != "" {
				envFiles = append(envFiles, envFile)
			}
			return config.Init(cfgFile, envFiles...)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default .revtrack.yaml)")
	flags.StringVar(&envFile, "env-file", "", "env file to load (default .env)")
	flags.String("driver", "", "storage driver: sqlite3, postgres or memory")
	flags.String("dsn", "", "database DSN or sqlite file path")
	flags.String("data-dir", "", "directory for the default sqlite database")
	flags.String("catalog-dir", "", "directory of subject catalogs")
	_ = viper.BindPFlag("storage.driver", flags.Lookup("driver"))
	_ = viper.BindPFlag("storage.dsn", flags.Lookup("dsn"))
	_ = viper.BindPFlag("storage.data_dir", flags.Lookup("data-dir"))
	_ = viper.BindPFlag("catalog_dir", flags.Lookup("catalog-dir"))

	rootCmd.AddCommand(addCmd())
	rootCmd.AddCommand(reviewCmd())
	rootCmd.AddCommand(listCmd())
	rootCmd.AddCommand(statsCmd())
	rootCmd.AddCommand(settingsCmd())
	rootCmd.AddCommand(catalogCmd())
	rootCmd.AddCommand(importCmd())
	rootCmd.AddCommand(remindCmd())
	rootCmd.AddCommand(quarantineCmd())

	return rootCmd
}
