package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/udisondev/craftplan/internal/data"
	"github.com/udisondev/craftplan/internal/resolver"
)

func newSpawnCmd(a *app) *cobra.Command {
	var tags, influences []string

	cmd := &cobra.Command{
		Use:     "spawn <mod>",
		Short:   "Show the tier, spawn weights and bench recipes of a mod for an item base",
		Example: "  craftplan spawn IncreasedLife1 --tags ring,default --influence shaper",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.resolver(cmd.Context())
			if err != nil {
				return err
			}
			an, err := res.AnalyseMod(args[0], tags, influences)
			if err != nil {
				return err
			}
			return printModAnalysis(cmd.OutOrStdout(), an)
		},
	}
	cmd.Flags().StringSliceVar(&tags, "tags", nil, "item base tags")
	cmd.Flags().StringSliceVar(&influences, "influence", nil, "item influences, e.g. shaper,elder")
	return cmd
}

func printModAnalysis(out io.Writer, an *resolver.ModAnalysis) error {
	mod, b := an.Mod, an.SpawnWeights
	fmt.Fprintf(out, "%s (%s): total weight %d, spawnable %t\n", mod.ID, mod.Name, b.TotalWeight, an.Spawnable)
	if an.Tier.Tier > 0 {
		fmt.Fprintf(out, "tier %d of %d in group %s\n", an.Tier.Tier, an.Tier.TotalTiers, an.Tier.Group)
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, w := range b.Relevant {
		fmt.Fprintf(tw, "  %s\t%d\n", w.Tag, w.Weight)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if len(b.Disabled) > 0 {
		fmt.Fprintf(out, "disabled for: %s\n", strings.Join(b.Disabled, ", "))
	}
	for _, s := range mod.Stats {
		fmt.Fprintf(out, "stat %s: %d to %d\n", s.ID, s.Min, s.Max)
	}

	if len(an.BenchOptions) == 0 {
		return nil
	}
	fmt.Fprintln(out, "bench:")
	for _, r := range an.BenchOptions {
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\n", r.ID, r.Master, r.Budget, formatCosts(r.Cost))
	}
	return tw.Flush()
}

func formatCosts(costs []data.Cost) string {
	parts := make([]string, len(costs))
	for i, c := range costs {
		parts[i] = fmt.Sprintf("%g %s", c.Amount, c.Currency)
	}
	return strings.Join(parts, ", ")
}
