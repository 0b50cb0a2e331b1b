package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/abhisek/gcsetutor/internal/diagnostic"
)

var diagnosticCmd = &cobra.Command{
	Use:   "diagnostic [subject]",
	Short: "List subjects or preview a diagnostic question set",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		bank, err := loadBank(cfg)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(args) == 0 {
			printSubjects(out, bank)
			return nil
		}

		count, _ := cmd.Flags().GetInt("count")
		sel := diagnostic.NewSelector(bank, nil)
		if _, ok := bank.Subject(args[0]); !ok {
			fmt.Fprintln(out, metaStyle.Render("Unknown subject, showing the generic self-assessment set."))
		}
		for i, q := range sel.SelectSet(args[0], count) {
			fmt.Fprintf(out, "%d. [%s] %s\n", i+1, q.Difficulty, q.Text)
			fmt.Fprintln(out, metaStyle.Render("   "+q.TopicArea+" · "+q.ID))
		}
		return nil
	},
}

func printSubjects(w io.Writer, bank *diagnostic.Bank) {
	fmt.Fprintln(w, headerStyle.Render("Subjects"))
	for _, code := range bank.Subjects() {
		s, _ := bank.Subject(code)
		fmt.Fprintf(w, "  %-18s %-24s %d questions\n", s.Code, s.Name, len(s.Questions))
	}
}

func init() {
	diagnosticCmd.Flags().IntP("count", "n", diagnostic.DefaultSetSize, "Number of questions to select")
}
