package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/riskpilot-ai/riskpilot/internal/cli"
	"github.com/riskpilot-ai/riskpilot/internal/cli/admin"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "riskpilotd",
		Short: "RiskPilot daemon and CLI",
		Long:  "RiskPilot daemon for running the API server and managing projects",
	}

	cli.AddHelpJSONFlag(rootCmd)
	rootCmd.AddCommand(admin.ServeCmd())
	rootCmd.AddCommand(admin.ProjectCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
