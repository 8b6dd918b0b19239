package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/iho/loanledger/internal/domain"
	"github.com/iho/loanledger/internal/infrastructure/postgres"
)

var (
	baseURL string
	timeout time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "loanledger-cli",
		Short: "LoanLedger CLI tool",
		Long:  `A command line interface for interacting with the LoanLedger API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the LoanLedger API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	scheduleCmd := &cobra.Command{
		Use:   "schedule",
		Short: "Amortization schedule operations",
	}
	scheduleCmd.AddCommand(previewScheduleCmd())
	rootCmd.AddCommand(scheduleCmd)

	loanCmd := &cobra.Command{
		Use:   "loan",
		Short: "Loan operations",
	}
	loanCmd.AddCommand(&cobra.Command{
		Use:   "get <loan-id>",
		Short: "Fetch a loan",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			fetchAndPrint("/api/v1/loans/" + args[0])
		},
	})
	loanCmd.AddCommand(&cobra.Command{
		Use:   "status <loan-id>",
		Short: "Show the assessed state of every installment",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			showLoanStatus(args[0])
		},
	})
	rootCmd.AddCommand(loanCmd)

	sessionCmd := &cobra.Command{
		Use:   "session",
		Short: "Cash session operations",
	}
	sessionCmd.AddCommand(openSessionCmd())
	sessionCmd.AddCommand(closeSessionCmd())
	sessionCmd.AddCommand(&cobra.Command{
		Use:   "balance <session-id>",
		Short: "Show the running cash balance of a session",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			fetchAndPrint("/api/v1/sessions/" + args[0] + "/balance")
		},
	})
	sessionCmd.AddCommand(&cobra.Command{
		Use:   "summary <session-id>",
		Short: "Show the closing summary of a session",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			fetchAndPrint("/api/v1/sessions/" + args[0] + "/summary")
		},
	})
	rootCmd.AddCommand(sessionCmd)

	rootCmd.AddCommand(&cobra.Command{
		Use:   "health",
		Short: "Check API readiness",
		Run: func(cmd *cobra.Command, args []string) {
			fetchAndPrint("/ready")
		},
	})

	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func previewScheduleCmd() *cobra.Command {
	var (
		principal string
		rate      string
		term      int
		start     string
	)

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Compute an amortization schedule locally",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := decimal.NewFromString(principal)
			if err != nil {
				return fmt.Errorf("invalid principal: %w", err)
			}
			r, err := decimal.NewFromString(rate)
			if err != nil {
				return fmt.Errorf("invalid rate: %w", err)
			}
			startDate, err := time.Parse("2006-01-02", start)
			if err != nil {
				return fmt.Errorf("invalid start date: %w", err)
			}

			rows, err := domain.GenerateSchedule(p, r, term, startDate)
			if err != nil {
				return err
			}

			fmt.Printf("%-4s %-12s %12s %12s %12s %12s\n",
				"#", "Due", "Amount", "Principal", "Interest", "Balance")
			for _, row := range rows {
				fmt.Printf("%-4d %-12s %12s %12s %12s %12s\n",
					row.Number,
					row.DueDate.Format("2006-01-02"),
					row.Amount.StringFixed(2),
					row.PrincipalAmount.StringFixed(2),
					row.InterestAmount.StringFixed(2),
					row.RemainingBalance.StringFixed(2),
				)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&principal, "principal", "", "Loan principal")
	cmd.Flags().StringVar(&rate, "rate", "", "Annual interest rate, e.g. 0.24")
	cmd.Flags().IntVar(&term, "term", 0, "Number of monthly installments")
	cmd.Flags().StringVar(&start, "start", time.Now().Format("2006-01-02"), "Disbursement date (YYYY-MM-DD)")

	return cmd
}

func migrateCmd() *cobra.Command {
	var (
		databaseURL    string
		migrationsPath string
	)

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration operations",
	}

	cmd.PersistentFlags().StringVar(&databaseURL, "database-url",
		os.Getenv("DATABASE_URL"), "PostgreSQL connection URL")
	cmd.PersistentFlags().StringVar(&migrationsPath, "migrations-path",
		"migrations", "Path to migration files")

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return postgres.RunMigrations(databaseURL, migrationsPath)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the last migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return postgres.RunMigrationsDown(databaseURL, migrationsPath)
		},
	})

	return cmd
}

func openSessionCmd() *cobra.Command {
	var (
		cashierID string
		opening   string
	)

	cmd := &cobra.Command{
		Use:   "open",
		Short: "Open a cash session for a cashier",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := postJSON("/api/v1/sessions", map[string]any{
				"cashier_id":      cashierID,
				"opening_balance": opening,
			})
			if err != nil {
				return err
			}
			printJSON(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&cashierID, "cashier", "", "Cashier ID")
	cmd.Flags().StringVar(&opening, "opening", "0.00", "Opening cash balance")

	return cmd
}

func closeSessionCmd() *cobra.Command {
	var (
		cashierID string
		counted   string
	)

	cmd := &cobra.Command{
		Use:   "close <session-id>",
		Short: "Close a cash session against a counted balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := postJSON("/api/v1/sessions/"+args[0]+"/close", map[string]any{
				"cashier_id":      cashierID,
				"counted_balance": counted,
			})
			if err != nil {
				return err
			}
			printJSON(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&cashierID, "cashier", "", "Cashier ID")
	cmd.Flags().StringVar(&counted, "counted", "", "Counted cash balance")

	return cmd
}

func showLoanStatus(loanID string) {
	result, err := fetchJSON("/api/v1/loans/" + loanID + "/status")
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	if loan, ok := result["loan"].(map[string]any); ok {
		fmt.Printf("Loan: %v (client %v)\n", loan["id"], loan["client_id"])
	}
	fmt.Printf("Total pending: %v\n", result["total_pending"])
	fmt.Printf("Outstanding principal: %v\n", result["outstanding_principal"])
	fmt.Printf("Fully paid: %v\n", result["fully_paid"])

	installments, ok := result["installments"].([]any)
	if !ok {
		return
	}

	fmt.Printf("%-14s %-4s %-12s %12s %8s %8s\n",
		"ID", "#", "Due", "Pending", "Late", "Settled")
	for _, raw := range installments {
		inst, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		id, _ := inst["installment_id"].(string)
		fmt.Printf("%-14s %-4v %-12v %12v %8v %8v\n",
			truncate(id, 14),
			inst["number"],
			inst["due_date"],
			inst["pending_total"],
			inst["has_late_fee"],
			inst["settled"],
		)
	}
}

func fetchAndPrint(path string) {
	result, err := fetchJSON(path)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	printJSON(result)
}

func postJSON(path string, payload map[string]any) (map[string]any, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	client := &http.Client{Timeout: timeout}
	resp, err := client.Post(baseURL+path, "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("request failed (status %d): %s", resp.StatusCode, string(respBody))
	}

	var result map[string]any
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return result, nil
}

func fetchJSON(path string) (map[string]any, error) {
	client := &http.Client{Timeout: timeout}
	resp, err := client.Get(baseURL + path)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("request failed (status %d): %s", resp.StatusCode, string(body))
	}

	var result map[string]any
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return result, nil
}

func printJSON(v any) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("Failed to encode output: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
