package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ledgerhouse/cashbook/internal/infrastructure/postgres"
)

var (
	baseURL    string
	timeout    time.Duration
	actingUser string
)

func main() {
	rootCmd := newRootCmd()

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "cashbook-cli",
		Short: "Cashbook CLI tool",
		Long:  `A command line interface for interacting with the Cashbook API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the Cashbook API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")
	rootCmd.PersistentFlags().StringVar(&actingUser, "user", "", "Acting user for approvals")

	rootCmd.AddCommand(newAccountCmd())
	rootCmd.AddCommand(newExpenseCmd())
	rootCmd.AddCommand(newPaymentCmd())
	rootCmd.AddCommand(newDevolutionCmd())
	rootCmd.AddCommand(newLedgerCmd())
	rootCmd.AddCommand(newMigrateCmd())

	return rootCmd
}

func newAccountCmd() *cobra.Command {
	accountCmd := &cobra.Command{
		Use:   "account",
		Short: "Account operations",
	}

	var name, currency, kind, balance string
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create an account",
		Run: func(cmd *cobra.Command, args []string) {
			doRequest(http.MethodPost, "/api/v1/accounts", map[string]any{
				"name":            name,
				"currency":        currency,
				"kind":            kind,
				"initial_balance": balance,
			})
		},
	}
	createCmd.Flags().StringVar(&name, "name", "", "Account name")
	createCmd.Flags().StringVar(&currency, "currency", "", "ISO currency code")
	createCmd.Flags().StringVar(&kind, "kind", "", "Account kind (generic or bank)")
	createCmd.Flags().StringVar(&balance, "balance", "0", "Initial balance")

	getCmd := &cobra.Command{
		Use:   "get [id]",
		Short: "Get an account",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			doRequest(http.MethodGet, "/api/v1/accounts/"+args[0], nil)
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		Run: func(cmd *cobra.Command, args []string) {
			doRequest(http.MethodGet, "/api/v1/accounts", nil)
		},
	}

	entriesCmd := &cobra.Command{
		Use:   "entries [id]",
		Short: "List ledger entries for an account",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			doRequest(http.MethodGet, "/api/v1/accounts/"+args[0]+"/entries", nil)
		},
	}

	accountCmd.AddCommand(createCmd, getCmd, listCmd, entriesCmd)
	return accountCmd
}

func newExpenseCmd() *cobra.Command {
	expenseCmd := &cobra.Command{
		Use:   "expense",
		Short: "Expense operations",
	}

	var accountID, name, currency, total string
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Register an expense",
		Run: func(cmd *cobra.Command, args []string) {
			doRequest(http.MethodPost, "/api/v1/expenses", map[string]any{
				"account_id": accountID,
				"name":       name,
				"currency":   currency,
				"total":      total,
			})
		},
	}
	createCmd.Flags().StringVar(&accountID, "account", "", "Originating account ID")
	createCmd.Flags().StringVar(&name, "name", "", "Expense name")
	createCmd.Flags().StringVar(&currency, "currency", "", "ISO currency code")
	createCmd.Flags().StringVar(&total, "total", "", "Total amount")

	getCmd := &cobra.Command{
		Use:   "get [id]",
		Short: "Get an expense",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			doRequest(http.MethodGet, "/api/v1/expenses/"+args[0], nil)
		},
	}

	expenseCmd.AddCommand(createCmd, getCmd)
	return expenseCmd
}

func newPaymentCmd() *cobra.Command {
	var from, to, date, amount, rate, reference string
	var verified bool

	paymentCmd := &cobra.Command{
		Use:   "payment",
		Short: "Pay from one account into another",
		Run: func(cmd *cobra.Command, args []string) {
			body := map[string]any{
				"account_id":    from,
				"account_to_id": to,
				"date":          date,
				"amount":        amount,
				"reference":     reference,
				"verification":  verified,
			}
			if rate != "" {
				body["exchange_rate"] = rate
			}
			doRequest(http.MethodPost, "/api/v1/payments", body)
		},
	}

	paymentCmd.Flags().StringVar(&from, "from", "", "Source account ID")
	paymentCmd.Flags().StringVar(&to, "to", "", "Destination account ID")
	paymentCmd.Flags().StringVar(&date, "date", "", "Movement date (YYYY-MM-DD)")
	paymentCmd.Flags().StringVar(&amount, "amount", "", "Amount in source currency")
	paymentCmd.Flags().StringVar(&rate, "rate", "", "Exchange rate")
	paymentCmd.Flags().StringVar(&reference, "reference", "", "Reference text")
	paymentCmd.Flags().BoolVar(&verified, "verified", false, "Confirm immediately")

	return paymentCmd
}

func newDevolutionCmd() *cobra.Command {
	var expenseID, date, amount, reference string
	var verified bool

	devolutionCmd := &cobra.Command{
		Use:   "devolution",
		Short: "Pay back part of an expense",
		Run: func(cmd *cobra.Command, args []string) {
			doRequest(http.MethodPost, "/api/v1/devolutions", map[string]any{
				"account_id":   expenseID,
				"amount":       amount,
				"date":         date,
				"reference":    reference,
				"verification": verified,
			})
		},
	}

	devolutionCmd.Flags().StringVar(&expenseID, "expense", "", "Expense ID")
	devolutionCmd.Flags().StringVar(&amount, "amount", "", "Amount to pay back")
	devolutionCmd.Flags().StringVar(&date, "date", "", "Movement date (YYYY-MM-DD)")
	devolutionCmd.Flags().StringVar(&reference, "reference", "", "Reference text")
	devolutionCmd.Flags().BoolVar(&verified, "verified", false, "Confirm immediately")

	return devolutionCmd
}

func newLedgerCmd() *cobra.Command {
	ledgerCmd := &cobra.Command{
		Use:   "ledger",
		Short: "Ledger operations",
	}

	getCmd := &cobra.Command{
		Use:   "get [id]",
		Short: "Get a ledger entry",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			doRequest(http.MethodGet, "/api/v1/ledger/"+args[0], nil)
		},
	}

	approveCmd := &cobra.Command{
		Use:   "approve [id]",
		Short: "Approve a pending entry",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			doRequest(http.MethodPost, "/api/v1/ledger/"+args[0]+"/approve", nil)
		},
	}

	cancelCmd := &cobra.Command{
		Use:   "cancel [id]",
		Short: "Cancel an entry and reverse its effects",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			doRequest(http.MethodPost, "/api/v1/ledger/"+args[0]+"/cancel", nil)
		},
	}

	consistencyCmd := &cobra.Command{
		Use:   "consistency",
		Short: "Check ledger consistency",
		Run: func(cmd *cobra.Command, args []string) {
			checkConsistency()
		},
	}

	ledgerCmd.AddCommand(getCmd, approveCmd, cancelCmd, consistencyCmd)
	return ledgerCmd
}

func newMigrateCmd() *cobra.Command {
	var databaseURL, migrationsPath string

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return postgres.RunMigrations(databaseURL, migrationsPath)
		},
	}

	downCmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back the last migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return postgres.RunMigrationsDown(databaseURL, migrationsPath)
		},
	}

	migrateCmd.PersistentFlags().StringVar(&databaseURL, "database-url", os.Getenv("DATABASE_URL"), "PostgreSQL URL")
	migrateCmd.PersistentFlags().StringVar(&migrationsPath, "path", "migrations", "Migrations directory")

	migrateCmd.AddCommand(upCmd, downCmd)
	return migrateCmd
}

func doRequest(method, path string, body map[string]any) {
	client := &http.Client{Timeout: timeout}

	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			fmt.Printf("Failed to encode request: %v\n", err)
			os.Exit(1)
		}
		reqBody = strings.NewReader(string(raw))
	}

	req, err := http.NewRequest(method, baseURL+path, reqBody)
	if err != nil {
		fmt.Printf("Failed to build request: %v\n", err)
		os.Exit(1)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if actingUser != "" {
		req.Header.Set("X-Acting-User", actingUser)
	}

	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	fmt.Printf("Status: %d\n%s\n", resp.StatusCode, formatJSON(raw))

	if resp.StatusCode >= 400 {
		os.Exit(1)
	}
}

func checkConsistency() {
	client := &http.Client{Timeout: timeout}
	resp, err := client.Get(baseURL + "/api/v1/ledger/consistency")
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		fmt.Printf("Consistency check FAILED (Status: %d)\nResponse: %s\n", resp.StatusCode, string(body))
		os.Exit(1)
	}

	var result struct {
		Consistent         bool     `json:"consistent"`
		MismatchedExpenses []string `json:"mismatched_expenses"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		fmt.Printf("Failed to parse response: %v\n", err)
		os.Exit(1)
	}

	if result.Consistent {
		fmt.Println("Consistency check PASSED")
		return
	}

	fmt.Println("Consistency check FAILED")
	for _, id := range result.MismatchedExpenses {
		fmt.Printf("  mismatched expense: %s\n", id)
	}
	os.Exit(1)
}

func formatJSON(raw []byte) string {
	var buf map[string]any
	if err := json.Unmarshal(raw, &buf); err == nil {
		if pretty, err := json.MarshalIndent(buf, "", "  "); err == nil {
			return string(pretty)
		}
	}

	var list []any
	if err := json.Unmarshal(raw, &list); err == nil {
		if pretty, err := json.MarshalIndent(list, "", "  "); err == nil {
			return string(pretty)
		}
	}

	return string(raw)
}
