package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/fintrack/internal/cli"
	"github.com/Veraticus/fintrack/internal/common"
	"github.com/Veraticus/fintrack/internal/report"
)

func reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Balances, cash flow and spending reports",
	}

	balances := &cobra.Command{
		Use:   "balances",
		Short: "Account balances, total balance and open invoices",
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			if err := listAccounts(cmd, a); err != nil {
				return err
			}
			st := a.store.State()
			invoices := report.OpenInvoices(st.CreditCards, st.Transactions)
			if len(invoices) == 0 {
				return nil
			}
			rows := make([][]string, 0, len(invoices))
			for _, inv := range invoices {
				rows = append(rows, []string{inv.Card.Label(), a.money.Format(inv.Total)})
			}
			a.println(cli.FormatTitle("Open invoices"))
			a.println(cli.RenderTable([]string{"Card", "Open"}, rows))
			return nil
		}),
	}

	cashflow := &cobra.Command{
		Use:   "cashflow",
		Short: "Income, expenses and net flow of a month",
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			st, err := a.view(cmd.Context())
			if err != nil {
				return err
			}
			year, month, err := monthFlag(cmd)
			if err != nil {
				return err
			}
			s := report.CashFlow(st.Transactions, year, month)
			a.println(cli.FormatTitle(fmt.Sprintf("Cash flow %04d-%02d", year, month)))
			a.println(cli.RenderTable([]string{"Income", "Expenses", "Net"}, [][]string{{
				a.money.Format(s.Income), a.money.Format(s.Expense), a.money.Format(s.Net),
			}}))
			return nil
		}),
	}

	categories := &cobra.Command{
		Use:   "categories",
		Short: "Expenses by category for a month or a year",
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			st, err := a.view(cmd.Context())
			if err != nil {
				return err
			}
			var slices []report.Slice
			var title string
			if yearFlag, _ := cmd.Flags().GetInt("year"); yearFlag != 0 {
				slices = report.AnnualExpensesByCategory(st.Transactions, yearFlag)
				title = fmt.Sprintf("Expenses by category %d", yearFlag)
			} else {
				year, month, err := monthFlag(cmd)
				if err != nil {
					return err
				}
				slices = report.ExpensesByCategory(st.Transactions, year, month)
				title = fmt.Sprintf("Expenses by category %04d-%02d", year, month)
			}
			a.println(cli.FormatTitle(title))
			a.println(sliceTable(a, slices))
			return nil
		}),
	}
	categories.Flags().Int("year", 0, "aggregate a whole year instead of a month")

	invoice := &cobra.Command{
		Use:   "invoice CARD",
		Short: "Charges of a card in a month",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			st, err := a.view(cmd.Context())
			if err != nil {
				return err
			}
			card, ok := st.CreditCard(args[0])
			if !ok {
				return common.NewUserError("Credit card not found: "+args[0], common.ErrNotFound)
			}
			year, month, err := monthFlag(cmd)
			if err != nil {
				return err
			}
			inv := report.CardInvoice(card, st.Transactions, year, month)
			a.println(cli.FormatTitle(fmt.Sprintf("%s %04d-%02d", card.Label(), year, month)))
			a.println(cli.RenderTable([]string{"Total", "Paid", "Unpaid"}, [][]string{{
				a.money.Format(inv.Total), a.money.Format(inv.Paid), a.money.Format(inv.Unpaid),
			}}))
			if len(inv.Transactions) > 0 {
				a.println(cli.RenderTable(
					[]string{"ID", "Date", "Description", "Category", "Account/Card", "Amount", "Status"},
					transactionRows(a, st, inv.Transactions),
				))
				a.println(sliceTable(a, inv.ByCategory))
			}
			return nil
		}),
	}

	compare := &cobra.Command{
		Use:   "compare",
		Short: "Compare a month with the month before",
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			st, err := a.view(cmd.Context())
			if err != nil {
				return err
			}
			year, month, err := monthFlag(cmd)
			if err != nil {
				return err
			}
			c := report.CompareMonths(st.Transactions, year, month)
			prev := fmt.Sprintf("%04d-%02d", c.PrevYear, c.PrevMonth)
			cur := fmt.Sprintf("%04d-%02d", c.Year, c.Month)
			a.println(cli.RenderTable([]string{"", prev, cur, "Change"}, [][]string{
				{"Income", a.money.Format(c.Previous.Income), a.money.Format(c.Current.Income), a.money.Percent(c.IncomeChange())},
				{"Expenses", a.money.Format(c.Previous.Expense), a.money.Format(c.Current.Expense), a.money.Percent(c.ExpenseChange())},
				{"Net", a.money.Format(c.Previous.Net), a.money.Format(c.Current.Net), a.money.Percent(c.NetChange())},
			}))
			return nil
		}),
	}

	years := &cobra.Command{
		Use:   "years",
		Short: "Years that have transactions",
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			st, err := a.view(cmd.Context())
			if err != nil {
				return err
			}
			for _, y := range report.AvailableYears(st.Transactions, time.Now()) {
				a.println(strconv.Itoa(y))
			}
			return nil
		}),
	}

	for _, c := range []*cobra.Command{cashflow, categories, invoice, compare} {
		c.Flags().String("month", "", "month (YYYY-MM, default current)")
	}

	cmd.AddCommand(balances, cashflow, categories, invoice, compare, years)
	return cmd
}

func monthFlag(cmd *cobra.Command) (int, time.Month, error) {
	s, _ := cmd.Flags().GetString("month")
	return parseMonth(s, time.Now())
}

func sliceTable(a *app, slices []report.Slice) string {
	rows := make([][]string, 0, len(slices))
	for _, s := range slices {
		rows = append(rows, []string{s.Label, a.money.Format(s.Value)})
	}
	return cli.RenderTable([]string{"Category", "Amount"}, rows)
}
