package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var version = "1.0.0"

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "archive-cli",
	Short: "Browse and export the family photo archive",
	Long: `archive-cli reads the photo catalog with the same configuration as the
archive API and runs bucket listing and exports from the terminal.

Examples:
  archive-cli buckets
  archive-cli buckets --key 2024-09
  archive-cli export --ids 12,7,31 --out ./downloads
  archive-cli export --bucket recent --out ./downloads`,
	Version: version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		envFile, _ := cmd.Flags().GetString("env-file")
		loadEnvFile(envFile)
	},
}

func init() {
	rootCmd.AddCommand(bucketsCmd)
	rootCmd.AddCommand(exportCmd)

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().String("env-file", ".env", "Environment file to load before reading configuration")
}

func loadEnvFile(path string) {
	if path == "" {
		return
	}
	if _, err := os.Stat(path); err != nil {
		return
	}
	if err := godotenv.Overload(path); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", path, err)
	}
}
