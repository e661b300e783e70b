package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/tillbooks/ledger/internal/infrastructure/config"
	"github.com/tillbooks/ledger/internal/infrastructure/postgres"
)

var (
	baseURL string
	timeout time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "tillbooks-cli",
		Short: "Tillbooks CLI tool",
		Long:  `A command line interface for interacting with the Tillbooks API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the Tillbooks API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(accountCmd())
	rootCmd.AddCommand(transferCmd())
	rootCmd.AddCommand(approvalCmd())
	rootCmd.AddCommand(ledgerCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Run: func(cmd *cobra.Command, args []string) {
			cfg := mustLoadConfig()
			if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
				fmt.Printf("Migration failed: %v\n", err)
				os.Exit(1)
			}
			fmt.Println("Migrations applied")
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the last migration",
		Run: func(cmd *cobra.Command, args []string) {
			cfg := mustLoadConfig()
			if err := postgres.RunMigrationsDown(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
				fmt.Printf("Rollback failed: %v\n", err)
				os.Exit(1)
			}
			fmt.Println("Migration rolled back")
		},
	})

	return cmd
}

func accountCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Account operations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "get <account-id>",
		Short: "Show an account",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			getJSON("/api/v1/accounts/" + args[0])
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "open-branch <branch-id>",
		Short: "Open the cash and petty cash accounts for a branch",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			postJSON("/api/v1/accounts/branch", map[string]any{"branch_id": args[0]}, "")
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "open-company-bank <company-id>",
		Short: "Open a company bank account",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			postJSON("/api/v1/accounts/company-bank", map[string]any{"company_id": args[0]}, "")
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "open-customer-credit <customer-id> <credit-limit>",
		Short: "Open a customer credit line",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			postJSON("/api/v1/accounts/customer-credit", map[string]any{
				"customer_id":  args[0],
				"credit_limit": args[1],
			}, "")
		},
	})

	return cmd
}

func transferCmd() *cobra.Command {
	var source, destination, kind, key string

	cmd := &cobra.Command{
		Use:   "transfer <amount>",
		Short: "Execute a transfer operation",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			body := map[string]any{
				"amount": args[0],
				"kind":   kind,
			}
			if source != "" {
				body["source_account_id"] = source
			}
			if destination != "" {
				body["destination_account_id"] = destination
			}
			postJSON("/api/v1/transfers", body, key)
		},
	}

	cmd.Flags().StringVar(&source, "from", "", "Source account ID")
	cmd.Flags().StringVar(&destination, "to", "", "Destination account ID")
	cmd.Flags().StringVar(&kind, "kind", "FUND_TRANSFER", "Operation kind")
	cmd.Flags().StringVar(&key, "key", "", "Idempotency key")
	cmd.MarkFlagRequired("key")

	return cmd
}

func approvalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "approval",
		Short: "Approval workflow operations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "pending",
		Short: "List pending approvals",
		Run: func(cmd *cobra.Command, args []string) {
			getJSON("/api/v1/approvals")
		},
	})

	var decidedBy, note string
	decideCmd := &cobra.Command{
		Use:   "decide <approval-id> <APPROVE|REJECT>",
		Short: "Decide a pending approval",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			postJSON("/api/v1/approvals/"+args[0]+"/decide", map[string]any{
				"decided_by": decidedBy,
				"decision":   args[1],
				"note":       note,
			}, "")
		},
	}
	decideCmd.Flags().StringVar(&decidedBy, "by", "", "Approver identifier")
	decideCmd.Flags().StringVar(&note, "note", "", "Decision note")
	decideCmd.MarkFlagRequired("by")
	cmd.AddCommand(decideCmd)

	return cmd
}

func ledgerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Ledger operations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "reconcile [account-id]",
		Short: "Check ledger balances against the audit log",
		Args:  cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) == 1 {
				checkReconciliation("/api/v1/accounts/" + args[0] + "/reconciliation")
				return
			}
			checkReconciliation("/api/v1/ledger/reconciliation")
		},
	})

	return cmd
}

func checkReconciliation(path string) {
	client := &http.Client{Timeout: timeout}
	resp, err := client.Get(baseURL + path)
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		fmt.Printf("Reconciliation FAILED (Status: %d)\nResponse: %s\n", resp.StatusCode, string(body))
		os.Exit(1)
	}

	var result map[string]any
	if err := json.Unmarshal(body, &result); err != nil {
		fmt.Printf("Failed to parse response: %v\n", err)
		os.Exit(1)
	}

	if reconciled, ok := result["reconciled"].(bool); ok {
		if reconciled {
			fmt.Println("Reconciliation PASSED")
		} else {
			fmt.Println("Reconciliation FAILED")
			printJSON(result)
			os.Exit(1)
		}
		return
	}

	printJSON(result)
}

func getJSON(path string) {
	client := &http.Client{Timeout: timeout}
	resp, err := client.Get(baseURL + path)
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	printResponse(resp)
}

func postJSON(path string, body map[string]any, idempotencyKey string) {
	payload, err := json.Marshal(body)
	if err != nil {
		fmt.Printf("Failed to encode request: %v\n", err)
		os.Exit(1)
	}

	req, err := http.NewRequest(http.MethodPost, baseURL+path, bytes.NewReader(payload))
	if err != nil {
		fmt.Printf("Failed to build request: %v\n", err)
		os.Exit(1)
	}
	req.Header.Set("Content-Type", "application/json")
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}

	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	printResponse(resp)
}

func printResponse(resp *http.Response) {
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode >= 400 {
		fmt.Printf("Request failed (Status: %d)\nResponse: %s\n", resp.StatusCode, string(body))
		os.Exit(1)
	}

	var result any
	if err := json.Unmarshal(body, &result); err != nil {
		fmt.Println(string(body))
		return
	}
	printJSON(result)
}

func printJSON(v any) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("%v\n", v)
		return
	}
	fmt.Println(string(out))
}

func mustLoadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	return cfg
}
