package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/lmh1306048089-eng/DigitalTradeSim-sub002/internal/declaration/model"
	"github.com/lmh1306048089-eng/DigitalTradeSim-sub002/internal/validation"
)

const (
	outputText = "text"
	outputJSON = "json"
)

type validateOptions struct {
	rulesFile  string
	sequential bool
	fix        bool
	output     string
}

func validateCmd() *cobra.Command {
	var opts validateOptions

	cmd := &cobra.Command{
		Use:   "validate <declaration.json>",
		Short: "Validate a declaration record",
		Long: `Validate a declaration record read from a JSON file ("-" reads stdin).

Exits with status 2 when the declaration has blocking findings.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.output != outputText && opts.output != outputJSON {
				return fmt.Errorf("unsupported output format %q", opts.output)
			}
			rec, err := readRecord(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			return runValidate(cmd, rec, opts)
		},
	}

	cmd.Flags().StringVar(&opts.rulesFile, "rules", "", "YAML file overriding the built-in rule tables")
	cmd.Flags().BoolVar(&opts.sequential, "sequential", false, "Run checker stages one after another")
	cmd.Flags().BoolVar(&opts.fix, "fix", false, "Apply every automatic correction and revalidate")
	cmd.Flags().StringVarP(&opts.output, "output", "o", outputText, "Output format: text or json")
	return cmd
}

func readRecord(stdin io.Reader, path string) (model.DeclarationRecord, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return model.DeclarationRecord{}, fmt.Errorf("failed to read declaration: %w", err)
	}

	var rec model.DeclarationRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return model.DeclarationRecord{}, fmt.Errorf("invalid declaration %s: %w", path, err)
	}
	return rec, nil
}

func runValidate(cmd *cobra.Command, rec model.DeclarationRecord, opts validateOptions) error {
	rules, err := validation.LoadRuleSet(opts.rulesFile)
	if err != nil {
		return err
	}
	v := validation.NewValidator(
		validation.WithRules(rules),
		validation.WithParallel(!opts.sequential),
	)

	ctx := cmd.Context()
	report := v.Validate(ctx, rec)

	applied := 0
	if opts.fix {
		rec, applied, err = validation.ApplyAllAutoFixes(rec, report.Findings())
		if err != nil {
			return err
		}
		if applied > 0 {
			report = v.Validate(ctx, rec)
		}
	}

	out := cmd.OutOrStdout()
	if opts.output == outputJSON {
		var payload any = report
		if opts.fix {
			payload = model.FixResult{Record: rec, Report: report}
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(payload); err != nil {
			return err
		}
	} else {
		if opts.fix {
			fmt.Fprintf(out, "Applied %d automatic correction(s)\n\n", applied)
		}
		if err := printReport(out, report); err != nil {
			return err
		}
	}

	if !report.CustomsReady {
		return errNotCustomsReady
	}
	return nil
}

func printReport(w io.Writer, report *model.ValidationReport) error {
	fmt.Fprintf(w, "Status: %s  Passed: %d/%d  Customs-ready: %t  (%.2fms)\n",
		report.OverallStatus, report.PassedCount, report.TotalChecks, report.CustomsReady,
		float64(report.ValidationTime.Microseconds())/1000)

	findings := report.Findings()
	if len(findings) == 0 {
		fmt.Fprintln(w, "No findings.")
		return nil
	}

	fmt.Fprintln(w)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SEVERITY\tFIELD\tMESSAGE\tSUGGESTION\tFIX")
	for _, f := range findings {
		fix := "-"
		if f.CanAutoFix() {
			fix = fmt.Sprint(f.FixValue)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", f.Severity, f.Field, f.Message, f.Suggestion, fix)
	}
	return tw.Flush()
}
