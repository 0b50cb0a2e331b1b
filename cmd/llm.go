package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/gcsetutor/internal/llm"
	"github.com/abhisek/gcsetutor/internal/store"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect recorded model calls",
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent model calls",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		purpose, _ := cmd.Flags().GetString("purpose")

		return withEvents(cmd, func(events store.EventRepo, out io.Writer) error {
			rows, err := events.QueryLLMEvents(cmd.Context(), store.QueryOpts{Limit: limit})
			if err != nil {
				return fmt.Errorf("query events: %w", err)
			}
			printEvents(out, rows, purpose)
			return nil
		})
	},
}

var llmViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show the request and response of one model call",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid event id %q", args[0])
		}
		return withEvents(cmd, func(events store.EventRepo, out io.Writer) error {
			e, err := events.GetLLMEvent(cmd.Context(), id)
			if err != nil {
				return err
			}
			if e == nil {
				return fmt.Errorf("event %d not found", id)
			}
			printEvent(out, e)
			return nil
		})
	},
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Token usage per purpose and estimated cost per model",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEvents(cmd, func(events store.EventRepo, out io.Writer) error {
			byPurpose, err := events.LLMUsageByPurpose(cmd.Context())
			if err != nil {
				return fmt.Errorf("usage by purpose: %w", err)
			}
			if len(byPurpose) == 0 {
				fmt.Fprintln(out, "No model calls recorded yet.")
				return nil
			}
			byModel, err := events.LLMUsageByModel(cmd.Context())
			if err != nil {
				return fmt.Errorf("usage by model: %w", err)
			}
			printUsage(out, byPurpose)
			fmt.Fprintln(out)
			printCost(out, byModel)
			return nil
		})
	},
}

// withEvents opens the configured store for the duration of fn.
func withEvents(cmd *cobra.Command, fn func(store.EventRepo, io.Writer) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	st, err := openStore(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(st.EventRepo(), cmd.OutOrStdout())
}

func printEvents(w io.Writer, events []store.LLMEvent, purpose string) {
	shown := 0
	fmt.Fprintf(w, "%-5s  %-19s  %-12s  %-28s  %6s  %6s  %6s  %s\n",
		"ID", "Time", "Purpose", "Model", "In", "Out", "Ms", "OK")
	fmt.Fprintln(w, rule(100))
	for _, e := range events {
		if purpose != "" && e.Purpose != purpose {
			continue
		}
		ok := successStyle.Render("yes")
		if !e.Success {
			ok = errorStyle.Render("no")
		}
		fmt.Fprintf(w, "%-5d  %-19s  %-12s  %-28s  %6d  %6d  %6d  %s\n",
			e.ID, e.Timestamp.Local().Format("2006-01-02 15:04:05"), truncate(e.Purpose, 12),
			truncate(e.Model, 28), e.InputTokens, e.OutputTokens, e.LatencyMs, ok)
		shown++
	}
	if shown == 0 {
		fmt.Fprintln(w, metaStyle.Render("No model calls found."))
	}
}

func printEvent(w io.Writer, e *store.LLMEvent) {
	field := func(k string, v any) { fmt.Fprintf(w, "%s %v\n", metaStyle.Render(fmt.Sprintf("%-9s", k+":")), v) }
	field("ID", e.ID)
	field("Time", e.Timestamp.Local().Format("2006-01-02 15:04:05"))
	field("Provider", e.Provider)
	field("Model", e.Model)
	field("Purpose", e.Purpose)
	field("Tokens", fmt.Sprintf("%d in / %d out", e.InputTokens, e.OutputTokens))
	field("Latency", fmt.Sprintf("%dms", e.LatencyMs))
	if e.ErrorMessage != "" {
		field("Error", errorStyle.Render(e.ErrorMessage))
	}

	for _, section := range []struct{ title, body string }{
		{"REQUEST", e.RequestBody},
		{"RESPONSE", e.ResponseBody},
	} {
		fmt.Fprintln(w)
		fmt.Fprintln(w, headerStyle.Render(section.title))
		fmt.Fprintln(w, rule(60))
		if section.body == "" {
			fmt.Fprintln(w, metaStyle.Render("(not captured)"))
			continue
		}
		fmt.Fprintln(w, section.body)
	}
}

func printUsage(w io.Writer, rows []store.LLMPurposeUsage) {
	fmt.Fprintln(w, headerStyle.Render("Usage by purpose"))
	fmt.Fprintf(w, "%-16s  %6s  %10s  %10s  %8s\n", "Purpose", "Calls", "Input", "Output", "Avg ms")
	fmt.Fprintln(w, rule(60))
	var calls, in, out int
	for _, u := range rows {
		fmt.Fprintf(w, "%-16s  %6d  %10d  %10d  %8d\n", u.Purpose, u.Calls, u.InputTokens, u.OutputTokens, u.AvgLatencyMs)
		calls += u.Calls
		in += u.InputTokens
		out += u.OutputTokens
	}
	fmt.Fprintln(w, rule(60))
	fmt.Fprintf(w, "%-16s  %6d  %10d  %10d\n", "total", calls, in, out)
}

func printCost(w io.Writer, rows []store.LLMModelUsage) {
	fmt.Fprintln(w, headerStyle.Render("Estimated cost (USD)"))
	fmt.Fprintf(w, "%-32s  %6s  %10s\n", "Model", "Calls", "Cost")
	fmt.Fprintln(w, rule(52))
	var total float64
	var unpriced []string
	for _, u := range rows {
		cost := "?"
		if c := llm.LookupCost(u.Model); c != nil {
			usd := c.Cost(u.InputTokens, u.OutputTokens)
			total += usd
			cost = formatCost(usd)
		} else {
			unpriced = append(unpriced, u.Model)
		}
		fmt.Fprintf(w, "%-32s  %6d  %10s\n", truncate(u.Model, 32), u.Calls, cost)
	}
	fmt.Fprintln(w, rule(52))
	label := "total"
	if len(unpriced) > 0 {
		label = "total (partial)"
	}
	fmt.Fprintf(w, "%-32s  %6s  %10s\n", label, "", formatCost(total))
	if len(unpriced) > 0 {
		fmt.Fprintln(w, metaStyle.Render("No pricing for: "+strings.Join(unpriced, ", ")))
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func formatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of calls to show")
	llmListCmd.Flags().StringP("purpose", "p", "", "Only show calls with this purpose (e.g. tutor-turn)")

	llmCmd.AddCommand(llmListCmd, llmViewCmd, llmStatsCmd)
}
