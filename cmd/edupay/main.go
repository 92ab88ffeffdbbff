package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/edupay-lk/edupay/internal/interfaces/cli/migrate"
	"github.com/edupay-lk/edupay/internal/interfaces/cli/server"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "edupay",
		Short: "EduPay - payment slip verification service",
		Long:  `EduPay verifies student bank transfer claims against forwarded bank SMS messages and approves matching payments automatically.`,
	}

	rootCmd.AddCommand(
		server.NewCommand(),
		migrate.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
