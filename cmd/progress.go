package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/abhisek/gcsetutor/internal/progress"
)

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Show subject-level progress for a student",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		st, err := openStore(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		student, _ := cmd.Flags().GetString("student")
		rows, err := st.EvidenceRepo().ListByStudent(cmd.Context(), student)
		if err != nil {
			return fmt.Errorf("list evidence: %w", err)
		}
		printSummaries(cmd.OutOrStdout(), student, progress.AggregateBySubject(rows))
		return nil
	},
}

func printSummaries(w io.Writer, student string, summaries []progress.SubjectSummary) {
	if len(summaries) == 0 {
		fmt.Fprintf(w, "No progress recorded for %s yet.\n", student)
		return
	}

	fmt.Fprintln(w, headerStyle.Render("Progress for "+student))
	fmt.Fprintln(w, rule(78))
	fmt.Fprintf(w, "%-20s  %6s  %6s  %13s  %8s  %5s  %s\n",
		"Subject", "Topics", "Secure", "Strengthening", "Building", "%", "Label")
	fmt.Fprintln(w, rule(78))
	for _, s := range summaries {
		fmt.Fprintf(w, "%-20s  %6d  %6d  %13d  %8d  %4d%%  %s\n",
			truncate(s.SubjectID, 20), s.TopicCount, s.Secure, s.Strengthening, s.Building,
			s.ProgressPercentage, stateStyle(string(s.Label)).Render(string(s.Label)))
	}
}

func init() {
	progressCmd.Flags().String("student", defaultStudent(), "Student id")
}
