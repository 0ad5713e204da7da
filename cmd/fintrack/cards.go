package main

import (
	"github.com/spf13/cobra"

	"github.com/Veraticus/fintrack/internal/cli"
	"github.com/Veraticus/fintrack/internal/common"
	"github.com/Veraticus/fintrack/internal/ledger"
	"github.com/Veraticus/fintrack/internal/report"
)

func cardsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "cards",
		Aliases: []string{"card"},
		Short:   "Manage credit cards",
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			return listCards(cmd, a)
		}),
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List cards with their open invoice",
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			return listCards(cmd, a)
		}),
	}

	add := &cobra.Command{
		Use:   "add NAME",
		Short: "Add a credit card",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			in := ledger.CreditCardInput{Name: args[0]}
			in.LastFourDigits, _ = cmd.Flags().GetString("last4")
			in.Flag, _ = cmd.Flags().GetString("flag")
			var err error
			closing, _ := cmd.Flags().GetString("closing-day")
			if in.InvoiceClosingDay, err = parseDay(closing); err != nil {
				return err
			}
			due, _ := cmd.Flags().GetString("due-day")
			if in.InvoiceDueDay, err = parseDay(due); err != nil {
				return err
			}
			return a.mutate(cmd.Context(), func() error {
				card, err := a.ledger.AddCreditCard(in)
				if err != nil {
					return err
				}
				a.success("Added card " + card.Label() + " (" + card.ID + ")")
				return nil
			})
		}),
	}
	addCardFlags(add)

	edit := &cobra.Command{
		Use:   "edit ID",
		Short: "Change a credit card",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			return a.mutate(cmd.Context(), func() error {
				card, ok := a.store.State().CreditCard(args[0])
				if !ok {
					return common.NewUserError("Credit card not found: "+args[0], common.ErrNotFound)
				}
				flags := cmd.Flags()
				if flags.Changed("name") {
					card.Name, _ = flags.GetString("name")
				}
				if flags.Changed("last4") {
					card.LastFourDigits, _ = flags.GetString("last4")
				}
				if flags.Changed("flag") {
					card.Flag, _ = flags.GetString("flag")
				}
				if flags.Changed("closing-day") {
					s, _ := flags.GetString("closing-day")
					day, err := parseDay(s)
					if err != nil {
						return err
					}
					card.InvoiceClosingDay = day
				}
				if flags.Changed("due-day") {
					s, _ := flags.GetString("due-day")
					day, err := parseDay(s)
					if err != nil {
						return err
					}
					card.InvoiceDueDay = day
				}
				if flags.Changed("inactive") {
					card.Inactive, _ = flags.GetBool("inactive")
				}
				if err := a.ledger.UpdateCreditCard(card); err != nil {
					return err
				}
				a.success("Updated card " + card.Label())
				return nil
			})
		}),
	}
	edit.Flags().String("name", "", "card name")
	addCardFlags(edit)
	edit.Flags().Bool("inactive", false, "refuse new charges on the card")

	del := &cobra.Command{
		Use:     "delete ID",
		Aliases: []string{"rm"},
		Short:   "Delete a card without charges",
		Args:    cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			return a.mutate(cmd.Context(), func() error {
				if err := a.ledger.DeleteCreditCard(args[0]); err != nil {
					return err
				}
				a.success("Deleted card " + args[0])
				return nil
			})
		}),
	}

	cmd.AddCommand(list, add, edit, del)
	return cmd
}

func addCardFlags(cmd *cobra.Command) {
	cmd.Flags().String("last4", "", "last four digits")
	cmd.Flags().String("flag", "", "card network, e.g. Visa")
	cmd.Flags().String("closing-day", "", "invoice closing day (1-31)")
	cmd.Flags().String("due-day", "", "invoice due day (1-31)")
}

func listCards(cmd *cobra.Command, a *app) error {
	st, err := a.view(cmd.Context())
	if err != nil {
		return err
	}
	if len(st.CreditCards) == 0 {
		a.info("No credit cards yet. Add one with: fintrack cards add NAME")
		return nil
	}

	rows := make([][]string, 0, len(st.CreditCards))
	for _, card := range st.CreditCards {
		rows = append(rows, []string{
			card.ID,
			card.Label(),
			card.Flag,
			formatDay(card.InvoiceClosingDay),
			formatDay(card.InvoiceDueDay),
			a.money.Format(report.OpenInvoiceTotal(card.ID, st.Transactions)),
			yesNo(card.Active()),
		})
	}
	a.println(cli.RenderTable([]string{"ID", "Card", "Flag", "Closes", "Due", "Open invoice", "Active"}, rows))
	return nil
}
