package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"marketplace_backend/internal/locationintel/cache"
	"marketplace_backend/internal/locationintel/scoring"
)

// scoreInput is the document read by the score command.
type scoreInput struct {
	Signal             scoring.LocationSignal   `json:"signal"`
	Competitors        []scoring.Competitor     `json:"competitors"`
	Weights            *scoring.WeightOverrides `json:"weights"`
	CaptureRatePercent *float64                 `json:"captureRatePercent"`
	AvgTicketSize      *float64                 `json:"avgTicketSize"`
}

var (
	labelColor = color.New(color.FgHiBlack)
	goodColor  = color.New(color.FgGreen, color.Bold)
	fairColor  = color.New(color.FgYellow)
	poorColor  = color.New(color.FgRed)
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "locintel",
		Short:        "locintel - offline location scoring and brand classification",
		SilenceUsage: true,
	}
	root.AddCommand(newScoreCmd(), newClassifyCmd(), newCacheKeyCmd(), newWeightsCmd())
	return root
}

func newScoreCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "score [file]",
		Short: "Score a location from a JSON signal document (stdin when file is omitted or -)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := readScoreInput(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}

			weights := scoring.ResolveWeights(in.Weights)
			rev := scoring.DefaultRevenueAssumptions()
			if in.CaptureRatePercent != nil {
				rev.CaptureRatePercent = *in.CaptureRatePercent
			}
			if in.AvgTicketSize != nil {
				rev.AvgTicketSize = *in.AvgTicketSize
			}
			result := scoring.Evaluate(in.Signal, in.Competitors, weights, rev)

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}
			printResult(out, result)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	return cmd
}

func newClassifyCmd() *cobra.Command {
	var reviews int
	cmd := &cobra.Command{
		Use:   "classify <name>",
		Short: "Classify a brand as popular or new",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var total *int
			if cmd.Flags().Changed("reviews") {
				if reviews < 0 {
					return fmt.Errorf("--reviews must not be negative")
				}
				total = &reviews
			}

			tier := scoring.ClassifyBrand(args[0], total)
			c := fairColor
			if tier == scoring.TierPopular {
				c = goodColor
			}
			_, err := c.Fprintln(cmd.OutOrStdout(), string(tier))
			return err
		},
	}
	cmd.Flags().IntVar(&reviews, "reviews", 0, "total user ratings")
	return cmd
}

func newCacheKeyCmd() *cobra.Command {
	var propertyType, businessType string
	cmd := &cobra.Command{
		Use:   "cache-key <lat> <lng>",
		Short: "Print the location cache key for a point",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			lat, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("invalid latitude %q: %w", args[0], err)
			}
			lng, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid longitude %q: %w", args[1], err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), cache.LocationKey(lat, lng, propertyType, businessType))
			return err
		},
	}
	cmd.Flags().StringVar(&propertyType, "property-type", "", "property type discriminator")
	cmd.Flags().StringVar(&businessType, "business-type", "", "business type discriminator")
	return cmd
}

func newWeightsCmd() *cobra.Command {
	var overrides []string
	cmd := &cobra.Command{
		Use:   "weights",
		Short: "Print the Brand-Fit weights, optionally merged with overrides",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			parsed, err := parseOverrideFlags(overrides)
			if err != nil {
				return err
			}
			w := scoring.ResolveWeights(parsed)

			out := cmd.OutOrStdout()
			rows := []struct {
				name  string
				value float64
			}{
				{"demographic", w.Demographic},
				{"footfall", w.Footfall},
				{"affluence", w.Affluence},
				{"competition", w.Competition},
				{"accessibility", w.Accessibility},
				{"sum", w.Sum()},
			}
			for _, row := range rows {
				labelColor.Fprintf(out, "%-14s", row.name)
				fmt.Fprintln(out, formatWeight(row.value))
			}
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&overrides, "override", nil, "weight override as key=value (repeatable)")
	return cmd
}

// formatWeight trims float noise such as 0.9999999999999999.
func formatWeight(v float64) string {
	return strconv.FormatFloat(math.Round(v*1e6)/1e6, 'f', -1, 64)
}

func readScoreInput(stdin io.Reader, args []string) (scoreInput, error) {
	r := stdin
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return scoreInput{}, fmt.Errorf("open signal document: %w", err)
		}
		defer func() {
			_ = f.Close()
		}()
		r = f
	}

	var in scoreInput
	if err := json.NewDecoder(r).Decode(&in); err != nil {
		return scoreInput{}, fmt.Errorf("decode signal document: %w", err)
	}
	return in, nil
}

var weightKeys = map[string]struct{}{
	"demographic":   {},
	"footfall":      {},
	"affluence":     {},
	"competition":   {},
	"accessibility": {},
}

func parseOverrideFlags(flags []string) (*scoring.WeightOverrides, error) {
	if len(flags) == 0 {
		return nil, nil
	}

	values := make(map[string]float64, len(flags))
	for _, flag := range flags {
		key, raw, ok := strings.Cut(flag, "=")
		key = strings.ToLower(strings.TrimSpace(key))
		if !ok {
			return nil, fmt.Errorf("override %q must be key=value", flag)
		}
		if _, known := weightKeys[key]; !known {
			return nil, fmt.Errorf("unknown weight %q (expected one of %s)", key, strings.Join(sortedWeightKeys(), ", "))
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, fmt.Errorf("override %q: %w", flag, err)
		}
		values[key] = value
	}

	raw, err := json.Marshal(values)
	if err != nil {
		return nil, err
	}
	return scoring.ParseWeightOverrides(raw)
}

func sortedWeightKeys() []string {
	keys := make([]string, 0, len(weightKeys))
	for k := range weightKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func printResult(out io.Writer, r scoring.Result) {
	scores := []struct {
		name  string
		value int
	}{
		{"brand fit", r.BrandFitScore},
		{"whitespace", r.WhitespaceScore},
		{"demand gap", r.DemandGapScore},
		{"saturation", r.SaturationIndex},
	}
	for _, s := range scores {
		labelColor.Fprintf(out, "%-12s", s.name)
		scoreColor(s.name, s.value).Fprintf(out, "%3d\n", s.value)
	}
	labelColor.Fprintf(out, "%-12s", "revenue/mo")
	fmt.Fprintf(out, "%d\n", r.EstimatedMonthlyRevenue)
	labelColor.Fprintf(out, "%-12s", "competitors")
	fmt.Fprintf(out, "%d (%d popular, %d new)\n", r.Competitors.Total, r.Competitors.Popular, r.Competitors.New)
}

// scoreColor grades a 0-100 score. Saturation is inverted: high is bad.
func scoreColor(name string, value int) *color.Color {
	if name == "saturation" {
		value = 100 - value
	}
	switch {
	case value >= 75:
		return goodColor
	case value >= 50:
		return fairColor
	default:
		return poorColor
	}
}
