package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var Version = "dev"

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "rentcare",
		Short:        "RentCare property management backend",
		Version:      Version,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().String("env-file", ".env", "dotenv file to load before reading the environment")
	rootCmd.PersistentFlags().String("api", "", "API base URL (overrides REACT_APP_API_BASE_URL)")
	rootCmd.PersistentFlags().String("token", "", "session token from `rentcare login` (overrides RENTCARE_TOKEN)")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(loginCmd())
	rootCmd.AddCommand(logoutCmd())
	rootCmd.AddCommand(sessionCmd())
	rootCmd.AddCommand(pingCmd())
	rootCmd.AddCommand(propertyCmd())
	rootCmd.AddCommand(tenantCmd())
	rootCmd.AddCommand(requestCmd())
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
