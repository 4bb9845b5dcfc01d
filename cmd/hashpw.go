/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/blogdb/server/internal/services"
	"github.com/spf13/cobra"
)

var hashCost int

// hashPasswordCmd prints bcrypt hashes suitable for the users.password column.
var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password [PASSWORD ...]",
	Short: "Print bcrypt hashes for the given passwords",
	Long: `Prints one bcrypt hash per password. With no arguments, passwords
are read from stdin, one per line.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		passwords := args
		if len(passwords) == 0 {
			scanner := bufio.NewScanner(cmd.InOrStdin())
			for scanner.Scan() {
				if line := strings.TrimRight(scanner.Text(), "\r"); line != "" {
					passwords = append(passwords, line)
				}
			}
			if err := scanner.Err(); err != nil {
				return err
			}
		}
		if len(passwords) == 0 {
			return errors.New("no password given")
		}

		for _, password := range passwords {
			hash, err := services.HashPassword(password, hashCost)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(hashPasswordCmd)
	hashPasswordCmd.Flags().IntVar(&hashCost, "cost", services.DefaultBcryptCost, "bcrypt cost factor")
}
