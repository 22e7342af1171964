package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/lmh1306048089-eng/DigitalTradeSim-sub002/internal/config"
	"github.com/lmh1306048089-eng/DigitalTradeSim-sub002/internal/database"
	"github.com/lmh1306048089-eng/DigitalTradeSim-sub002/internal/declaration/model"
	"github.com/lmh1306048089-eng/DigitalTradeSim-sub002/internal/declaration/store"
)

// catalogueEntry is one commodity code in an HS code catalogue file.
type catalogueEntry struct {
	Code        string `yaml:"code"`
	Description string `yaml:"description"`
	Category    string `yaml:"category"`
	Unit        string `yaml:"unit"`
}

func hsCodesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hscodes",
		Short: "Manage the HS code catalogue",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "import <catalogue.yaml>",
		Short: "Load an HS code catalogue into the database configured by DB_* variables",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			codes, err := readCatalogue(args[0])
			if err != nil {
				return err
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			db, err := database.New(&cfg.Database)
			if err != nil {
				return err
			}
			defer database.Close(db)
			if err := database.Migrate(db); err != nil {
				return err
			}

			if err := store.NewHSCodeStore(db).Upsert(cmd.Context(), codes); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d HS codes\n", len(codes))
			return nil
		},
	})
	return cmd
}

func readCatalogue(path string) ([]model.HSCode, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalogue: %w", err)
	}

	var entries []catalogueEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("invalid catalogue %s: %w", path, err)
	}

	codes := make([]model.HSCode, 0, len(entries))
	seen := make(map[string]bool, len(entries))
	for i, e := range entries {
		if e.Code == "" {
			return nil, fmt.Errorf("catalogue entry %d has no code", i+1)
		}
		if seen[e.Code] {
			return nil, fmt.Errorf("catalogue lists %s twice", e.Code)
		}
		seen[e.Code] = true
		codes = append(codes, model.HSCode{
			HSCode:      e.Code,
			Description: e.Description,
			Category:    e.Category,
			Unit:        e.Unit,
		})
	}
	return codes, nil
}
