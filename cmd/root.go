/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"os"

	"github.com/blogdb/server/config"
	"github.com/blogdb/server/internal/logging"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "blogdb",
	Short: "A small server-rendered blog backed by Postgres",
	Long: `blogdb serves a blog where users sign up, sign in and manage posts.

Configuration is read from the environment (and .env when ENV=dev).`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func newLogger(cfg config.Config) *logrus.Logger {
	return logging.New(cfg.Env, cfg.LogLevel)
}
