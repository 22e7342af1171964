// Package main provides declcheck, a command-line checker for customs declarations.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// errNotCustomsReady makes the process exit non-zero without printing an error line.
var errNotCustomsReady = errors.New("declaration is not customs-ready")

func main() {
	if err := rootCmd().Execute(); err != nil {
		if errors.Is(err, errNotCustomsReady) {
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "declcheck",
		Short: "Check customs declarations before submission",
		Long: `Check export customs declarations the way the training back end does.

Examples:
  declcheck validate declaration.json              # Print a findings table
  declcheck validate declaration.json --output json
  declcheck validate declaration.json --fix        # Apply every available correction
  declcheck rules --rules overrides.yaml           # Show the effective rule tables
  declcheck hscodes import catalogue.yaml          # Load the HS code catalogue
`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(validateCmd(), rulesCmd(), hsCodesCmd())
	return cmd
}
