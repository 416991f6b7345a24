package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/farefit/internal/llm"
	"github.com/abhisek/farefit/internal/store"
)

const timeLayout = "2006-01-02 15:04:05"

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect AI provider configuration and recorded requests",
}

var llmCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Show which LLM provider would be used",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, ok, err := llm.Resolve()
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("No LLM provider configured. Meal parsing, label scans and the coach are unavailable.")
			fmt.Println("Set FAREFIT_GEMINI_API_KEY (or GEMINI_API_KEY, OPENAI_API_KEY, ANTHROPIC_API_KEY, OPENROUTER_API_KEY).")
			return nil
		}
		fmt.Printf("Provider:  %s\n", c.Provider)
		fmt.Printf("Model:     %s\n", c.Model())
		fmt.Printf("Timeout:   %s\n", c.Timeout)
		fmt.Printf("Attempts:  %d\n", c.Retry.MaxAttempts)
		if cost := llm.LookupCost(c.Model()); cost != nil {
			fmt.Printf("Pricing:   $%.2f in / $%.2f out per 1M tokens\n", cost.InputPerMTok, cost.OutputPerMTok)
		}
		return nil
	},
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent LLM requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		purpose, _ := cmd.Flags().GetString("purpose")
		failed, _ := cmd.Flags().GetBool("failed")
		if purpose != "" && purpose != llm.PurposeUnknown && !llm.KnownPurpose(purpose) {
			return fmt.Errorf("unknown purpose %q (want one of %s)", purpose, strings.Join(llm.Purposes(), ", "))
		}

		svc, err := openServices(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer svc.Close()

		list, err := svc.store.EventRepo().QueryLLMEvents(cmd.Context(), purpose, store.QueryOpts{Limit: limit})
		if err != nil {
			return err
		}

		shown := 0
		for _, e := range list {
			if failed && e.Success {
				continue
			}
			if shown == 0 {
				fmt.Printf("%5s  %-19s  %-15s  %-26s  %7s  %6s\n", "ID", "Time", "Purpose", "Model", "Tokens", "Ms")
			}
			shown++
			status := ""
			if !e.Success {
				status = "  failed: " + truncate(e.ErrorMessage, 40)
			}
			fmt.Printf("%5d  %-19s  %-15s  %-26s  %7d  %6d%s\n",
				e.ID, e.Timestamp.Local().Format(timeLayout), e.Purpose,
				truncate(e.Model, 26), e.InputTokens+e.OutputTokens, e.LatencyMs, status)
		}
		if shown == 0 {
			fmt.Println("No LLM requests recorded.")
		}
		return nil
	},
}

var llmViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show the full request and response of one LLM call",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid ID %q: %w", args[0], err)
		}

		svc, err := openServices(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer svc.Close()

		e, err := svc.store.EventRepo().GetLLMEvent(cmd.Context(), id)
		if err != nil {
			return err
		}

		fmt.Printf("#%d  %s  %s/%s  purpose=%s\n", e.ID, e.Timestamp.Local().Format(timeLayout), e.Provider, e.Model, e.Purpose)
		fmt.Printf("%d input + %d output tokens in %dms\n", e.InputTokens, e.OutputTokens, e.LatencyMs)
		if !e.Success {
			fmt.Printf("Failed: %s\n", e.ErrorMessage)
		}
		printBody("Request", e.RequestBody)
		printBody("Response", e.ResponseBody)
		return nil
	},
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show token usage and estimated cost",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openServices(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer svc.Close()

		events := svc.store.EventRepo()
		byPurpose, err := events.LLMUsageByPurpose(cmd.Context())
		if err != nil {
			return err
		}
		if len(byPurpose) == 0 {
			fmt.Println("No LLM usage recorded yet.")
			return nil
		}
		byModel, err := events.LLMUsageByModel(cmd.Context())
		if err != nil {
			return err
		}

		printUsage(byPurpose)
		fmt.Println()
		printCost(byModel)
		return nil
	},
}

func printBody(label, body string) {
	fmt.Printf("\n── %s %s\n", label, strings.Repeat("─", max(0, 56-len(label))))
	if body == "" {
		fmt.Println("(not captured)")
		return
	}
	fmt.Println(body)
}

func printUsage(stats []store.LLMUsage) {
	fmt.Printf("%-16s  %6s  %10s  %10s  %8s\n", "Purpose", "Calls", "Input", "Output", "Avg ms")
	var calls, in, out int
	for _, st := range stats {
		fmt.Printf("%-16s  %6d  %10d  %10d  %8d\n",
			st.Purpose, st.Calls, st.InputTokens, st.OutputTokens, st.AvgLatencyMs)
		calls += st.Calls
		in += st.InputTokens
		out += st.OutputTokens
	}
	fmt.Printf("%-16s  %6d  %10d  %10d\n", "total", calls, in, out)
}

// printCost prices usage per model. Models without a known price are
// listed but left out of the total.
func printCost(stats []store.LLMUsage) {
	fmt.Printf("%-30s  %6s  %10s\n", "Model", "Calls", "Est. USD")
	var total float64
	var unpriced []string
	for _, mu := range stats {
		price := "?"
		if cost := llm.LookupCost(mu.Model); cost != nil {
			c := cost.Cost(mu.InputTokens, mu.OutputTokens)
			total += c
			price = formatCost(c)
		} else {
			unpriced = append(unpriced, mu.Model)
		}
		fmt.Printf("%-30s  %6d  %10s\n", truncate(mu.Model, 30), mu.Calls, price)
	}
	fmt.Printf("%-30s  %6s  %10s\n", "total", "", formatCost(total))
	if len(unpriced) > 0 {
		fmt.Printf("No pricing for %s; total is partial.\n", strings.Join(unpriced, ", "))
	}
}

// truncate shortens s to n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func formatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of requests to show")
	llmListCmd.Flags().StringP("purpose", "p", "", "Only show one purpose ("+strings.Join(llm.Purposes(), ", ")+")")
	llmListCmd.Flags().Bool("failed", false, "Only show failed requests")

	llmCmd.AddCommand(llmCheckCmd, llmListCmd, llmViewCmd, llmStatsCmd)
}
