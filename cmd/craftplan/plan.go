package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/udisondev/craftplan/internal/export"
	"github.com/udisondev/craftplan/internal/plan"
)

// planFile is the YAML layout accepted by plan --file.
type planFile struct {
	Steps       []plan.Step `yaml:"steps"`
	RiskTiers   []string    `yaml:"risk_tiers"`
	BudgetTiers []string    `yaml:"budget_tiers"`
}

type planFlags struct {
	file    string
	risks   []string
	budgets []string
	json    bool
	save    bool
	xlsx    string
}

func newPlanCmd(a *app) *cobra.Command {
	var f planFlags

	cmd := &cobra.Command{
		Use:   "plan [step...]",
		Short: "Annotate crafting steps and build the tier table",
		Long: `Each argument is one free-text step. Steps with explicit references,
per-step tiers or alternatives are read from a YAML file:

  steps:
    - text: Use the Maven
    - text: Craft X on the bench
      reference_type: bench_recipe
      reference_id: x_t1
  risk_tiers: [low, medium]
  budget_tiers: [budget]`,
		Example: `  craftplan plan "Use the Maven" "Craft X on the bench" --budget luxury
  craftplan plan --file ring.yaml --xlsx ring.xlsx`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(cmd, a, f, args)
		},
	}

	cmd.Flags().StringVarP(&f.file, "file", "f", "", "YAML file with steps and tiers")
	cmd.Flags().StringSliceVar(&f.risks, "risk", nil, "risk tiers to evaluate (default all)")
	cmd.Flags().StringSliceVar(&f.budgets, "budget", nil, "budget tiers to evaluate (default all)")
	cmd.Flags().BoolVar(&f.json, "json", false, "print the plan as JSON")
	cmd.Flags().BoolVar(&f.save, "save", false, "store the plan in the database")
	cmd.Flags().StringVar(&f.xlsx, "xlsx", "", "write the plan to an XLSX workbook")
	return cmd
}

func runPlan(cmd *cobra.Command, a *app, f planFlags, args []string) error {
	var in planFile
	if f.file != "" {
		raw, err := os.ReadFile(f.file)
		if err != nil {
			return fmt.Errorf("reading steps: %w", err)
		}
		if err := yaml.Unmarshal(raw, &in); err != nil {
			return fmt.Errorf("parsing %s: %w", f.file, err)
		}
	}
	for _, text := range args {
		in.Steps = append(in.Steps, plan.Step{Text: text})
	}
	if len(in.Steps) == 0 {
		return errors.New("no steps given: pass them as arguments or with --file")
	}
	if err := plan.ValidateSteps(in.Steps); err != nil {
		return err
	}
	if cmd.Flags().Changed("risk") {
		in.RiskTiers = f.risks
	}
	if cmd.Flags().Changed("budget") {
		in.BudgetTiers = f.budgets
	}

	risks, budgets, err := plan.ParseTiers(in.RiskTiers, in.BudgetTiers)
	if err != nil {
		return err
	}
	planCfg, err := a.cfg.Plan()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	res, err := a.resolver(ctx)
	if err != nil {
		return err
	}

	p, err := plan.NewBuilder(res, planCfg).Build(in.Steps, risks, budgets)
	if err != nil {
		return err
	}

	if f.save {
		database, err := a.openDB(ctx)
		if err != nil {
			return err
		}
		defer database.Close()
		if err := database.Plans().Save(ctx, p); err != nil {
			return err
		}
		slog.Info("plan saved", "id", p.ID)
	}

	if f.xlsx != "" {
		if err := writeXLSX(p, f.xlsx); err != nil {
			return err
		}
		slog.Info("plan exported", "path", f.xlsx)
	}

	out := cmd.OutOrStdout()
	if f.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(p)
	}
	return printPlan(out, p)
}

func writeXLSX(p *plan.Plan, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := export.WritePlanXLSX(p, file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func printPlan(out io.Writer, p *plan.Plan) error {
	fmt.Fprintf(out, "plan %s: %d steps, %d alternative routes\n", p.ID, len(p.Primary.Steps), len(p.Alternatives))

	for _, route := range p.Routes() {
		fmt.Fprintf(out, "\nroute %s\n", route.Name)

		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		for i, s := range route.Steps {
			match := s.Resolution
			if a, ok := s.Primary(); ok {
				match = fmt.Sprintf("%s/%s %q (%.2f)", a.Dataset, a.Entry.Info().ID, a.Entry.Info().Name, a.Confidence)
			}
			fmt.Fprintf(tw, "  %d.\t%s\t[%s]\t%s\n", i+1, s.Text, s.Status, match)
		}
		if err := tw.Flush(); err != nil {
			return err
		}

		fmt.Fprintln(out)
		tw = tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		header := []string{"  risk \\ budget"}
		for _, b := range p.BudgetTiers {
			header = append(header, b.String())
		}
		fmt.Fprintln(tw, strings.Join(header, "\t"))

		var reasons []string
		for _, r := range p.RiskTiers {
			row := []string{"  " + r.String()}
			for _, b := range p.BudgetTiers {
				o, _ := route.Option(r, b)
				if o.Satisfiable {
					row = append(row, fmt.Sprintf("%.1f", o.Total))
					continue
				}
				row = append(row, "-")
				reasons = append(reasons, fmt.Sprintf("  %s/%s: %s", r, b, o.Reason))
			}
			fmt.Fprintln(tw, strings.Join(row, "\t"))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		for _, reason := range reasons {
			fmt.Fprintln(out, reason)
		}
	}
	return nil
}
