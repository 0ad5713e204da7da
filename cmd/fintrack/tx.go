package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/fintrack/internal/cli"
	"github.com/Veraticus/fintrack/internal/common"
	"github.com/Veraticus/fintrack/internal/ledger"
	"github.com/Veraticus/fintrack/internal/model"
	"github.com/Veraticus/fintrack/internal/report"
	"github.com/Veraticus/fintrack/internal/state"
)

func txCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tx",
		Aliases: []string{"transactions", "transaction"},
		Short:   "Record and review transactions",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List transactions, newest first",
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			st, err := a.view(cmd.Context())
			if err != nil {
				return err
			}
			filter, err := listFilter(cmd)
			if err != nil {
				return err
			}
			limit, _ := cmd.Flags().GetInt("limit")

			txns := report.Apply(st.Transactions, filter)
			if limit > 0 && len(txns) > limit {
				txns = txns[:limit]
			}
			if len(txns) == 0 {
				a.info("No transactions")
				return nil
			}
			a.println(cli.RenderTable(
				[]string{"ID", "Date", "Description", "Category", "Account/Card", "Amount", "Status"},
				transactionRows(a, st, txns),
			))
			return nil
		}),
	}
	list.Flags().String("month", "", "only this month (YYYY-MM)")
	list.Flags().String("account", "", "only this account")
	list.Flags().String("card", "", "only this card")
	list.Flags().Int("limit", 50, "maximum rows (0 for all)")

	add := &cobra.Command{
		Use:   "add",
		Short: "Record income, an expense or a card charge",
		Example: `  fintrack tx add --type expense --account ACC --category Alimentação --amount 42,90 --desc "Mercado"
  fintrack tx add --type creditCardExpense --card CARD --category Lazer --amount 120 --date 2024-03-10`,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			in, err := transactionInput(cmd)
			if err != nil {
				return err
			}
			return a.mutate(cmd.Context(), func() error {
				txn, err := a.ledger.AddTransaction(in)
				if err != nil {
					return err
				}
				a.success(fmt.Sprintf("Recorded %s of %s (%s)", txn.Type, a.money.Format(txn.Amount), txn.ID))
				return nil
			})
		}),
	}
	transactionFlags(add)

	edit := &cobra.Command{
		Use:   "edit ID",
		Short: "Change a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			return a.mutate(cmd.Context(), func() error {
				txn, ok := a.store.State().Transaction(args[0])
				if !ok {
					return common.NewUserError("Transaction not found: "+args[0], common.ErrNotFound)
				}
				if err := applyTransactionFlags(cmd, &txn); err != nil {
					return err
				}
				if err := a.ledger.UpdateTransaction(txn); err != nil {
					return err
				}
				a.success("Updated transaction " + txn.ID)
				return nil
			})
		}),
	}
	transactionFlags(edit)

	del := &cobra.Command{
		Use:     "delete ID",
		Aliases: []string{"rm"},
		Short:   "Delete a transaction",
		Args:    cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			return a.mutate(cmd.Context(), func() error {
				if err := a.ledger.DeleteTransaction(args[0]); err != nil {
					return err
				}
				a.success("Deleted transaction " + args[0])
				return nil
			})
		}),
	}

	cmd.AddCommand(list, add, edit, del)
	return cmd
}

func transactionFlags(cmd *cobra.Command) {
	cmd.Flags().String("type", string(model.TransactionTypeExpense), "income, expense or creditCardExpense")
	cmd.Flags().String("account", "", "bank account for income and expenses")
	cmd.Flags().String("card", "", "credit card for card charges")
	cmd.Flags().String("category", "", "category name")
	cmd.Flags().String("amount", "", "amount, always positive")
	cmd.Flags().String("date", "", "date (YYYY-MM-DD, default today)")
	cmd.Flags().String("desc", "", "description")
}

func transactionInput(cmd *cobra.Command) (ledger.TransactionInput, error) {
	var txn model.Transaction
	txn.Type = model.TransactionTypeExpense
	if err := applyTransactionFlags(cmd, &txn); err != nil {
		return ledger.TransactionInput{}, err
	}
	if !cmd.Flags().Changed("date") {
		txn.Date = model.Today()
	}
	return ledger.TransactionInput{
		Type:         txn.Type,
		AccountID:    txn.AccountID,
		CreditCardID: txn.CreditCardID,
		Category:     txn.Category,
		Description:  txn.Description,
		Amount:       txn.Amount,
		Date:         txn.Date,
	}, nil
}

// applyTransactionFlags overwrites the fields of txn whose flags were set.
func applyTransactionFlags(cmd *cobra.Command, txn *model.Transaction) error {
	flags := cmd.Flags()
	if flags.Changed("type") {
		s, _ := flags.GetString("type")
		txn.Type = model.TransactionType(s)
		if !txn.Type.Valid() {
			return common.NewUserError(fmt.Sprintf("Invalid transaction type %q", s), common.ErrInvalidInput)
		}
	}
	if flags.Changed("account") {
		txn.AccountID, _ = flags.GetString("account")
		txn.CreditCardID = ""
	}
	if flags.Changed("card") {
		txn.CreditCardID, _ = flags.GetString("card")
		txn.AccountID = ""
	}
	if flags.Changed("category") {
		txn.Category, _ = flags.GetString("category")
	}
	if flags.Changed("desc") {
		txn.Description, _ = flags.GetString("desc")
	}
	if flags.Changed("amount") {
		s, _ := flags.GetString("amount")
		amount, err := parseAmount(s)
		if err != nil {
			return err
		}
		txn.Amount = amount
	}
	if flags.Changed("date") {
		s, _ := flags.GetString("date")
		date, err := parseDate(s)
		if err != nil {
			return err
		}
		txn.Date = date
	}
	return nil
}

func listFilter(cmd *cobra.Command) (report.Filter, error) {
	var filters []report.Filter
	if month, _ := cmd.Flags().GetString("month"); month != "" {
		year, m, err := parseMonth(month, time.Now())
		if err != nil {
			return nil, err
		}
		filters = append(filters, report.InMonth(year, m))
	}
	if id, _ := cmd.Flags().GetString("account"); id != "" {
		filters = append(filters, report.ForAccount(id))
	}
	if id, _ := cmd.Flags().GetString("card"); id != "" {
		filters = append(filters, report.ForCard(id))
	}
	return report.And(filters...), nil
}

func transactionRows(a *app, st state.State, txns []model.Transaction) [][]string {
	rows := make([][]string, 0, len(txns))
	for _, txn := range txns {
		target := txn.AccountID
		if acc, ok := st.Account(txn.AccountID); ok {
			target = acc.Label()
		}
		if !txn.Type.UsesAccount() {
			target = txn.CreditCardID
			if card, ok := st.CreditCard(txn.CreditCardID); ok {
				target = card.Label()
			}
		}

		amount := txn.Amount
		if txn.Type != model.TransactionTypeIncome {
			amount = amount.Neg()
		}

		status := ""
		if txn.Type == model.TransactionTypeCreditCardExpense {
			status = "open"
			if txn.Paid {
				status = "paid"
			}
		}

		rows = append(rows, []string{
			txn.ID,
			txn.Date.String(),
			txn.Description,
			model.CategoryLabel(txn.Category),
			target,
			a.money.Format(amount),
			status,
		})
	}
	return rows
}

func transferCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transfer FROM TO AMOUNT",
		Short: "Move money between two accounts",
		Args:  cobra.ExactArgs(3),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			amount, err := parseAmount(args[2])
			if err != nil {
				return err
			}
			dateFlag, _ := cmd.Flags().GetString("date")
			date, err := parseDate(dateFlag)
			if err != nil {
				return err
			}
			desc, _ := cmd.Flags().GetString("desc")
			return a.mutate(cmd.Context(), func() error {
				out, in, err := a.ledger.Transfer(ledger.TransferInput{
					FromAccountID: args[0],
					ToAccountID:   args[1],
					Amount:        amount,
					Date:          date,
					Description:   desc,
				})
				if err != nil {
					return err
				}
				a.success(fmt.Sprintf("Transferred %s (%s, %s)", a.money.Format(amount), out.ID, in.ID))
				return nil
			})
		}),
	}
	cmd.Flags().String("date", "", "date (YYYY-MM-DD, default today)")
	cmd.Flags().String("desc", "", "description")
	return cmd
}

func payCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pay CARD ACCOUNT",
		Short: "Pay the open invoice of a card from an account",
		Long: `Pay settles every open charge of the card and records the payment as an expense
of the account. The amount defaults to the open invoice total.`,
		Args: cobra.ExactArgs(2),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			dateFlag, _ := cmd.Flags().GetString("date")
			date, err := parseDate(dateFlag)
			if err != nil {
				return err
			}
			amountFlag, _ := cmd.Flags().GetString("amount")
			return a.mutate(cmd.Context(), func() error {
				amount := report.OpenInvoiceTotal(args[0], a.store.State().Transactions)
				if amountFlag != "" {
					if amount, err = parseAmount(amountFlag); err != nil {
						return err
					}
				}
				payment, err := a.ledger.PayInvoice(ledger.PaymentInput{
					CreditCardID: args[0],
					AccountID:    args[1],
					Amount:       amount,
					Date:         date,
				})
				if err != nil {
					return err
				}
				a.success(fmt.Sprintf("Paid %s (%s)", a.money.Format(payment.Amount), payment.ID))
				return nil
			})
		}),
	}
	cmd.Flags().String("amount", "", "amount paid (default: open invoice total)")
	cmd.Flags().String("date", "", "date (YYYY-MM-DD, default today)")
	return cmd
}
