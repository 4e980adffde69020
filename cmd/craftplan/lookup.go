package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/udisondev/craftplan/internal/data"
	"github.com/udisondev/craftplan/internal/resolver"
)

func newLookupCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <type> <id>",
		Short: "Resolve an explicit reference",
		Long: "Types: " + referenceTypeList() + `.
The id may also be a display name or alias that identifies one entry.`,
		Example: "  craftplan lookup boss maven_crucible",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			refType, err := resolver.ParseReferenceType(args[0])
			if err != nil {
				return err
			}
			res, err := a.resolver(cmd.Context())
			if err != nil {
				return err
			}
			e, err := res.Resolve(refType, args[1])
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(e)
		},
	}
}

func newSearchCmd(a *app) *cobra.Command {
	var minConfidence float64

	cmd := &cobra.Command{
		Use:     "search <text...>",
		Short:   "Match free text against every loaded dataset",
		Example: `  craftplan search "exalt slam"`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("min") {
				minConfidence = a.cfg.Matching.MinConfidence
			}
			res, err := a.resolver(cmd.Context())
			if err != nil {
				return err
			}

			matches := res.ResolveFreeText(strings.Join(args, " "), minConfidence)
			if len(matches) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "no match with confidence >= %.2f\n", minConfidence)
				return nil
			}
			return printMatches(cmd, matches)
		},
	}
	cmd.Flags().Float64Var(&minConfidence, "min", 0, "minimum confidence (default matching.min_confidence)")
	return cmd
}

func printMatches(cmd *cobra.Command, matches []data.Match) error {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SCORE\tTYPE\tID\tNAME")
	for _, m := range matches {
		info := m.Entry.Info()
		fmt.Fprintf(tw, "%.2f\t%s\t%s\t%s\n", m.Score, resolver.ReferenceTypeOf(m.Entry.Dataset()), info.ID, info.Name)
	}
	return tw.Flush()
}

func referenceTypeList() string {
	names := make([]string, len(resolver.ReferenceTypes))
	for i, t := range resolver.ReferenceTypes {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}
