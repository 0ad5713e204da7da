package main

import (
	"github.com/spf13/cobra"

	"github.com/Veraticus/fintrack/internal/cli"
	"github.com/Veraticus/fintrack/internal/common"
	"github.com/Veraticus/fintrack/internal/ledger"
	"github.com/Veraticus/fintrack/internal/report"
)

func accountsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "accounts",
		Aliases: []string{"account"},
		Short:   "Manage bank accounts",
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			return listAccounts(cmd, a)
		}),
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List accounts with their balances",
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			return listAccounts(cmd, a)
		}),
	}

	add := &cobra.Command{
		Use:   "add BANK",
		Short: "Add a bank account",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			number, _ := cmd.Flags().GetString("number")
			initial, _ := cmd.Flags().GetString("initial")
			balance, err := parseAmount(initial)
			if err != nil {
				return err
			}
			return a.mutate(cmd.Context(), func() error {
				acc, err := a.ledger.AddAccount(ledger.AccountInput{
					BankName:       args[0],
					AccountNumber:  number,
					InitialBalance: balance,
				})
				if err != nil {
					return err
				}
				a.success("Added account " + acc.Label() + " (" + acc.ID + ")")
				return nil
			})
		}),
	}
	add.Flags().String("number", "", "account number")
	add.Flags().String("initial", "0", "initial balance")

	edit := &cobra.Command{
		Use:   "edit ID",
		Short: "Change an account",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			return a.mutate(cmd.Context(), func() error {
				acc, ok := a.store.State().Account(args[0])
				if !ok {
					return common.NewUserError("Account not found: "+args[0], common.ErrNotFound)
				}
				flags := cmd.Flags()
				if flags.Changed("bank") {
					acc.BankName, _ = flags.GetString("bank")
				}
				if flags.Changed("number") {
					acc.AccountNumber, _ = flags.GetString("number")
				}
				if flags.Changed("initial") {
					s, _ := flags.GetString("initial")
					balance, err := parseAmount(s)
					if err != nil {
						return err
					}
					acc.InitialBalance = balance
				}
				if flags.Changed("active") {
					acc.Active, _ = flags.GetBool("active")
				}
				if err := a.ledger.UpdateAccount(acc); err != nil {
					return err
				}
				a.success("Updated account " + acc.Label())
				return nil
			})
		}),
	}
	edit.Flags().String("bank", "", "bank name")
	edit.Flags().String("number", "", "account number")
	edit.Flags().String("initial", "", "initial balance")
	edit.Flags().Bool("active", true, "whether new transactions may use the account")

	del := &cobra.Command{
		Use:     "delete ID",
		Aliases: []string{"rm"},
		Short:   "Delete an account without transactions",
		Args:    cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			return a.mutate(cmd.Context(), func() error {
				if err := a.ledger.DeleteAccount(args[0]); err != nil {
					return err
				}
				a.success("Deleted account " + args[0])
				return nil
			})
		}),
	}

	cmd.AddCommand(list, add, edit, del)
	return cmd
}

func listAccounts(cmd *cobra.Command, a *app) error {
	st, err := a.view(cmd.Context())
	if err != nil {
		return err
	}

	summaries := report.AccountBalances(st.Accounts, st.Transactions)
	if len(summaries) == 0 {
		a.info("No accounts yet. Add one with: fintrack accounts add BANK")
		return nil
	}

	rows := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		rows = append(rows, []string{
			s.Account.ID,
			s.Account.Label(),
			a.money.Format(s.Account.InitialBalance),
			a.money.Format(s.Balance),
			yesNo(s.Account.Active),
		})
	}
	a.println(cli.RenderTable([]string{"ID", "Account", "Initial", "Balance", "Active"}, rows))
	a.println(cli.BoldStyle.Render("Total: ") + a.money.Signed(report.TotalBalance(st.Accounts, st.Transactions)))
	return nil
}
