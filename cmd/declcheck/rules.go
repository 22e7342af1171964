package main

import (
	"github.com/spf13/cobra"

	"github.com/lmh1306048089-eng/DigitalTradeSim-sub002/internal/validation"
)

func rulesCmd() *cobra.Command {
	var rulesFile string

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Print the effective rule tables as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rules, err := validation.LoadRuleSet(rulesFile)
			if err != nil {
				return err
			}
			data, err := rules.Marshal()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	cmd.Flags().StringVar(&rulesFile, "rules", "", "YAML file overriding the built-in rule tables")
	return cmd
}
