package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/k0kubun/pp/v3"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/yurifrl/contabilu/pkg/config"
	"github.com/yurifrl/contabilu/pkg/csv"
	"github.com/yurifrl/contabilu/pkg/executors"
	"github.com/yurifrl/contabilu/pkg/models"
	"github.com/yurifrl/contabilu/pkg/report"
	"github.com/yurifrl/contabilu/pkg/service"
	"github.com/yurifrl/contabilu/pkg/ynab"
)

var (
	cliFilters filters
	cfgFile    string
)

func newLogger(cfg *config.Config) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    true,
		ReportTimestamp: true,
		Prefix:          "contabilu",
	})
	logger.SetLevel(cfg.Log.ParsedLevel())
	return logger
}

// setup loads the configuration (config file + env + flag overrides) and
// opens the database.
func setup(cmd *cobra.Command) (*service.Service, *config.Config, *log.Logger, error) {
	cfg, err := config.Build(cfgFile, cmd.Flags())
	if err != nil {
		return nil, nil, nil, err
	}
	logger := newLogger(cfg)
	svc, err := service.Open(cfg, logger)
	if err != nil {
		return nil, nil, nil, err
	}
	return svc, cfg, logger, nil
}

var rootCmd = &cobra.Command{
	Use:           "contabilu",
	Short:         "Chart of accounts and bank movement importer",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		// Show help when no subcommand is provided
		return cmd.Help()
	},
}

var importCmd = &cobra.Command{
	Use:   "import <workbook>",
	Short: "Replace the chart of accounts and bank movements with a workbook",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, _, _, err := setup(cmd)
		if err != nil {
			return err
		}
		defer svc.Close()

		out, err := svc.ImportFile(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		fmt.Println(out.Accounts.Message)
		if out.Transactions != nil {
			fmt.Println(out.Transactions.Message)
			if out.Transactions.Dropped > 0 || out.Transactions.Skipped > 0 {
				fmt.Printf("dropped %d row(s) without date or nature, skipped %d malformed row(s)\n",
					out.Transactions.Dropped, out.Transactions.Skipped)
			}
		}
		if !out.Success() {
			return errors.New("import failed")
		}
		return nil
	},
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <workbook>",
	Short: "Show what an import would write, without touching the database",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Build(cfgFile, cmd.Flags())
		if err != nil {
			return err
		}
		// inspect never touches storage
		svc := service.New(cfg, newLogger(cfg), nil)

		preview, err := svc.Preview(args[0])
		if err != nil {
			return err
		}

		rows, _ := cmd.Flags().GetInt("rows")
		noColor, _ := cmd.Flags().GetBool("no-color")
		printer := pp.New()
		printer.SetColoringEnabled(!noColor)

		txs := preview.Transactions
		if rows >= 0 && len(txs) > rows {
			txs = txs[:rows]
		}
		printer.Println(preview.Result)
		printer.Println(preview.Accounts)
		printer.Println(txs)
		fmt.Printf("%d account code(s), %d transaction(s)\n", len(preview.Accounts), len(preview.Transactions))
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show what the database currently holds",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		svc, _, _, err := setup(cmd)
		if err != nil {
			return err
		}
		defer svc.Close()

		st, err := svc.Status(cmd.Context())
		if err != nil {
			return err
		}
		enc := yaml.NewEncoder(os.Stdout)
		defer enc.Close()
		return enc.Encode(st)
	},
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Compute the financial indicators of a period",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		formatName, _ := cmd.Flags().GetString("format")
		format, err := report.ParseFormat(formatName)
		if err != nil {
			return err
		}
		from, to, err := cliFilters.period()
		if err != nil {
			return err
		}

		svc, _, _, err := setup(cmd)
		if err != nil {
			return err
		}
		defer svc.Close()

		rep, err := svc.Report(cmd.Context(), from, to)
		if err != nil {
			return err
		}
		return report.Render(os.Stdout, rep, format)
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export persisted transactions as CSV in the import layout",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		filter, err := cliFilters.storage()
		if err != nil {
			return err
		}

		svc, _, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		defer svc.Close()

		txs, err := svc.Transactions(cmd.Context(), filter)
		if err != nil {
			return err
		}
		body, err := csv.Transactions(txs, cliFilters.criteria().Func())
		if err != nil {
			return err
		}

		output, _ := cmd.Flags().GetString("output")
		if output == "" {
			_, err = os.Stdout.Write(body)
			return err
		}
		if err := os.WriteFile(output, body, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", output, err)
		}
		logger.Info("exported transactions", "file", output)
		return nil
	},
}

// ynabExecutor loads the filtered transactions and an executor for the
// configured YNAB account. The caller closes the service.
func ynabExecutor(cmd *cobra.Command) (*executors.Executor, *service.Service, []*models.Transaction, error) {
	filter, err := cliFilters.storage()
	if err != nil {
		return nil, nil, nil, err
	}
	svc, cfg, logger, err := setup(cmd)
	if err != nil {
		return nil, nil, nil, err
	}
	token := cfg.YNAB.Token()
	if token == "" {
		svc.Close()
		return nil, nil, nil, fmt.Errorf("ynab token not set, export %s", cfg.YNAB.TokenEnv)
	}
	txs, err := svc.Transactions(cmd.Context(), filter)
	if err != nil {
		svc.Close()
		return nil, nil, nil, err
	}
	return executors.New(logger, cfg.YNAB, ynab.New(token).Transaction()), svc, txs, nil
}

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Preview which transactions apply would create in YNAB (dry-run)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		exec, svc, txs, err := ynabExecutor(cmd)
		if err != nil {
			return err
		}
		defer svc.Close()

		_, err = exec.Plan(txs)
		return err
	},
}

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Create the missing transactions in YNAB",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		exec, svc, txs, err := ynabExecutor(cmd)
		if err != nil {
			return err
		}
		defer svc.Close()

		created, err := exec.Apply(txs)
		if err != nil {
			return err
		}
		fmt.Printf("created %d transaction(s)\n", created)
		return nil
	},
}

func init() {
	// Global flags
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&cfgFile, "config", "c", "", "Config file (default is config.yaml)")
	pf.String("database-url", "", "Database URL (postgres://... or sqlite://path)")
	pf.String("log-level", "", "Log level (debug, info, warn, error)")

	for _, cmd := range []*cobra.Command{importCmd, inspectCmd} {
		cmd.Flags().Int("batch-size", 0, "Rows per committed batch")
		cmd.Flags().String("accounts-sheet", "", "Chart of accounts sheet name")
		cmd.Flags().String("transactions-sheet", "", "Bank movements sheet name")
	}
	inspectCmd.Flags().Int("rows", 5, "Transactions to print, -1 for all")
	inspectCmd.Flags().Bool("no-color", false, "Disable colored output")

	reportCmd.Flags().StringP("format", "f", string(report.FormatTable), "Output format (table, json, yaml)")
	reportCmd.Flags().StringVar(&cliFilters.startDate, "from", "", "Start date (YYYY-MM-DD)")
	reportCmd.Flags().StringVar(&cliFilters.endDate, "to", "", "End date (YYYY-MM-DD)")

	cliFilters.register(exportCmd.Flags())
	exportCmd.Flags().StringP("output", "o", "", "Output file (default stdout)")

	for _, cmd := range []*cobra.Command{planCmd, applyCmd} {
		cliFilters.register(cmd.Flags())
		cmd.Flags().String("budget-id", "", "YNAB budget ID")
		cmd.Flags().String("account-id", "", "YNAB account ID")
		cmd.Flags().Bool("match-by-id", true, "Match remote transactions by the ID in their memo")
	}

	rootCmd.AddCommand(importCmd, inspectCmd, statusCmd, reportCmd, exportCmd, planCmd, applyCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
