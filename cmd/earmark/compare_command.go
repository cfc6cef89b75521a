package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"earmark/internal/matching"
	"earmark/internal/transcript"
)

func newCompareCommand(ctx *commandContext) *cobra.Command {
	var (
		jsonOut       bool
		minSimilarity float64
		certaintyBar  float64
		topK          int
	)

	cmd := &cobra.Command{
		Use:   "compare <transcript>",
		Short: "Decide whether the query's spoken content appears in the indexed reference",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := transcript.LoadFile(args[0])
			if err != nil {
				return err
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("min-similarity") {
				cfg.Matching.MinSimilarity = minSimilarity
			}
			if cmd.Flags().Changed("certainty-bar") {
				cfg.Matching.CertaintyBar = certaintyBar
			}
			if cmd.Flags().Changed("top-k") {
				cfg.Matching.TopK = topK
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			service, closer, err := ctx.openService(cmd.Context())
			if err != nil {
				return err
			}
			defer closer()

			result, err := service.Compare(cmd.Context(), input)
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), result)
			}
			renderResult(cmd, result)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit the verdict as JSON")
	cmd.Flags().Float64Var(&minSimilarity, "min-similarity", 0, "Override the per-candidate similarity floor")
	cmd.Flags().Float64Var(&certaintyBar, "certainty-bar", 0, "Override the aggregate confidence bar")
	cmd.Flags().IntVar(&topK, "top-k", 0, "Override the candidate count per query chunk")
	return cmd
}

func renderResult(cmd *cobra.Command, result matching.Result) {
	out := cmd.OutOrStdout()
	color := shouldColorize(out)

	switch result.Status {
	case matching.StatusNoPrimaryIndexed:
		fmt.Fprintln(out, "No reference corpus is indexed; run `earmark index store` first")
		return
	case matching.StatusFound:
		fmt.Fprintf(out, "%s with confidence %.3f\n",
			colorize(color, ansiGreen, "FOUND"), result.OverallConfidence)
	default:
		fmt.Fprintf(out, "%s (confidence %.3f, bar not met)\n",
			colorize(color, ansiYellow, "NOT FOUND"), result.OverallConfidence)
	}

	fmt.Fprintf(out, "Query chunks: %d matched, %d excluded, %d total\n",
		result.MatchedChunks, result.FailedChunks, result.TotalChunks)
	if result.Degraded {
		fmt.Fprintln(out, "Warning: result degraded; excluded chunk fraction exceeds tolerance")
	}
	if len(result.Regions) == 0 {
		if result.UntimedHits > 0 {
			fmt.Fprintln(out, "Reference corpus carries no timestamps; no regions to report")
		}
		return
	}

	rows := make([][]string, 0, len(result.Regions))
	for _, region := range result.Regions {
		rows = append(rows, []string{
			formatSeconds(region.Start),
			formatSeconds(region.End),
			fmt.Sprintf("%.3f", region.Confidence),
			strconv.Itoa(region.Support),
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Start", "End", "Confidence", "Support"},
		rows,
		[]columnAlignment{alignRight, alignRight, alignRight, alignRight}))
}

func formatSeconds(seconds float64) string {
	minutes := int(seconds) / 60
	return fmt.Sprintf("%d:%06.3f", minutes, seconds-float64(minutes*60))
}
