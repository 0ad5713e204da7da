package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Veraticus/fintrack/internal/cli"
	"github.com/Veraticus/fintrack/internal/common"
	"github.com/Veraticus/fintrack/internal/model"
	"github.com/Veraticus/fintrack/internal/ofx"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import [files...]",
		Short: "Import transactions from OFX/QFX statements",
		Long: `Import transactions from OFX or QFX files exported from your bank.

Bank statements need --account, card statements need --card. Importing the
same statement again updates the transactions instead of duplicating them.

Examples:
  fintrack import ~/Downloads/extrato_*.ofx --account acc-123
  fintrack import fatura.qfx --card card-456 --dry-run`,
		Args: cobra.MinimumNArgs(1),
		RunE: withApp(runImport),
	}
	cmd.Flags().String("account", "", "account the statement belongs to")
	cmd.Flags().String("card", "", "credit card the statement belongs to")
	cmd.Flags().BoolP("dry-run", "d", false, "preview without saving")
	cmd.MarkFlagsMutuallyExclusive("account", "card")
	cmd.MarkFlagsOneRequired("account", "card")
	return cmd
}

func runImport(cmd *cobra.Command, args []string, a *app) error {
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	interrupts := cli.NewInterruptHandler(cmd.ErrOrStderr())
	ctx := interrupts.HandleInterrupts(cmd.Context(), false)
	var target ofx.Target
	target.AccountID, _ = cmd.Flags().GetString("account")
	target.CreditCardID, _ = cmd.Flags().GetString("card")

	files, err := expandFiles(args)
	if err != nil {
		return err
	}

	parser := ofx.NewParser()
	seen := make(map[string]bool)
	var txns []model.Transaction
	for _, path := range files {
		if interrupts.WasInterrupted() {
			return nil
		}
		found, err := parseStatement(ctx, parser, path, target)
		if err != nil {
			common.LogError(err, "Failed to import file", common.Fields{"file": path})
			a.warn(fmt.Sprintf("Skipped %s: %s", filepath.Base(path), common.UserMessage(err)))
			continue
		}
		added := 0
		for _, txn := range found {
			if seen[txn.ID] {
				continue
			}
			seen[txn.ID] = true
			txns = append(txns, txn)
			added++
		}
		slog.Info("Processed file",
			"file", filepath.Base(path),
			"transactions_found", len(found),
			"added", added)
	}

	if len(txns) == 0 {
		a.info("No transactions found")
		return nil
	}
	model.SortByDateDesc(txns)

	if dryRun {
		st, err := a.view(ctx)
		if err != nil {
			return err
		}
		a.println(cli.RenderTable(
			[]string{"ID", "Date", "Description", "Category", "Account/Card", "Amount", "Status"},
			transactionRows(a, st, txns),
		))
		a.info(fmt.Sprintf("Dry run: %d transactions would be imported", len(txns)))
		return nil
	}

	var imported int
	err = a.mutate(ctx, func() error {
		var importErr error
		imported, importErr = a.ledger.ImportTransactions(txns)
		return importErr
	})
	if err != nil {
		if imported > 0 {
			a.warn(fmt.Sprintf("Imported %d of %d transactions", imported, len(txns)))
		}
		return err
	}
	a.success(fmt.Sprintf("Imported %d transactions from %d files", imported, len(files)))
	return nil
}

// expandFiles resolves glob patterns, keeping literal paths that exist.
func expandFiles(patterns []string) ([]string, error) {
	var files []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) > 0 {
			files = append(files, matches...)
			continue
		}
		if _, err := os.Stat(pattern); err == nil {
			files = append(files, pattern)
		} else {
			slog.Warn("No files found matching pattern", "pattern", pattern)
		}
	}
	if len(files) == 0 {
		return nil, common.NewUserError("No files found to import", common.ErrNotFound)
	}
	return files, nil
}

func parseStatement(ctx context.Context, parser *ofx.Parser, path string, target ofx.Target) ([]model.Transaction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			slog.Warn("Failed to close file", "file", path, "error", closeErr)
		}
	}()
	return parser.ParseFile(ctx, f, target)
}
