package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"earmark/internal/language"
	"earmark/internal/locator"
	"earmark/internal/transcript"
)

func newIndexCommand(ctx *commandContext) *cobra.Command {
	indexCmd := &cobra.Command{
		Use:   "index",
		Short: "Reference index maintenance",
	}

	indexCmd.AddCommand(newIndexStoreCommand(ctx))
	indexCmd.AddCommand(newIndexClearCommand(ctx))
	indexCmd.AddCommand(newIndexStatusCommand(ctx))

	return indexCmd
}

func newIndexStoreCommand(ctx *commandContext) *cobra.Command {
	var (
		languageFlag     string
		sourceName       string
		sourceConfidence float64
		jsonOut          bool
	)

	cmd := &cobra.Command{
		Use:   "store <transcript>",
		Short: "Index a reference transcript, replacing any previous corpus",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := transcript.LoadFile(args[0])
			if err != nil {
				return err
			}

			service, closer, err := ctx.openService(cmd.Context())
			if err != nil {
				return err
			}
			defer closer()

			lang := languageFlag
			if lang == "" {
				lang = input.Language
			}
			report, err := service.IndexReference(cmd.Context(), input, locator.ReferenceMeta{
				Language:         lang,
				SourceName:       sourceName,
				SourceConfidence: sourceConfidence,
			})
			if err != nil {
				return err
			}

			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), report)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Indexed %d of %d chunks", report.Indexed, report.TotalChunks)
			if report.Excluded > 0 {
				fmt.Fprintf(out, " (%d excluded after embedding failures)", report.Excluded)
			}
			fmt.Fprintln(out)
			if code := language.Normalize(lang); code != "" {
				fmt.Fprintf(out, "Language: %s (%s)\n", language.Display(code), code)
			}
			for _, issue := range report.Issues {
				fmt.Fprintf(out, "Dropped segment %d: %s\n", issue.SegmentIndex, issue.Reason)
			}
			if report.Degraded {
				fmt.Fprintln(out, "Warning: excluded chunk fraction exceeds the degraded tolerance")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&languageFlag, "language", "", "Language code or name stored with the corpus (defaults to the transcript's declared language)")
	cmd.Flags().StringVar(&sourceName, "source-name", "", "Source label stored with the corpus")
	cmd.Flags().Float64Var(&sourceConfidence, "source-confidence", 0, "Transcription confidence stored with the corpus")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit the indexing report as JSON")
	return cmd
}

func newIndexClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove the indexed reference corpus",
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, closer, err := ctx.openCorpus(cmd.Context())
			if err != nil {
				return err
			}
			defer closer()

			if err := manager.Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Reference corpus cleared")
			return nil
		},
	}
}

func newIndexStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show index statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, closer, err := ctx.openCorpus(cmd.Context())
			if err != nil {
				return err
			}
			defer closer()

			stats, err := manager.Stats(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), stats)
			}

			rows := [][]string{
				{"Database", stats.Path},
				{"Corpus indexed", yesNo(stats.HasCurrent)},
				{"Current generation", strconv.FormatInt(stats.CurrentGeneration, 10)},
				{"Current chunks", strconv.FormatInt(stats.CurrentChunks, 10)},
				{"Total rows", strconv.FormatInt(stats.TotalRows, 10)},
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Field", "Value"}, rows, nil))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit statistics as JSON")
	return cmd
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
