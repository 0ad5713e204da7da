package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/fintrack/internal/cli"
	"github.com/Veraticus/fintrack/internal/report"
)

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.st.Auth.Authenticated {
		return cli.RenderBox("FinTrack", cli.FormatWarning("Not logged in. Run: fintrack auth login")) + "\n"
	}

	panels := []string{m.renderAccounts(), m.renderInvoices()}
	var middle string
	if m.width >= 80 {
		middle = lipgloss.JoinHorizontal(lipgloss.Top, panels[0], "  ", panels[1])
	} else {
		middle = lipgloss.JoinVertical(lipgloss.Left, panels...)
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.renderHeader(),
		middle,
		cli.TitleStyle.Render("Recent transactions"),
		m.recent.View(),
		m.renderStatus(),
		m.help.View(m.keymap),
	)
}

func (m Model) renderHeader() string {
	user := ""
	if m.st.Auth.User != nil {
		user = m.st.Auth.User.Email
	}
	total := report.TotalBalance(m.st.Accounts, m.st.Transactions)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		cli.FormatTitle("FinTrack")+"  "+cli.SubtleStyle.Render(user+" · "+string(m.st.Theme)),
		cli.BoldStyle.Render("Total balance: ")+m.config.Money.Signed(total),
		"",
	)
}

func (m Model) renderAccounts() string {
	summaries := report.AccountBalances(m.st.Accounts, m.st.Transactions)
	if len(summaries) == 0 {
		return cli.RenderBox("Accounts", cli.SubtleStyle.Render("No accounts yet"))
	}

	var b strings.Builder
	for i, s := range summaries {
		if i > 0 {
			b.WriteString("\n")
		}
		label := s.Account.Label()
		if !s.Account.Active {
			label += cli.SubtleStyle.Render(" (inactive)")
		}
		b.WriteString(label + "  " + m.config.Money.Signed(s.Balance))
	}
	return cli.RenderBox("Accounts", b.String())
}

func (m Model) renderInvoices() string {
	invoices := report.OpenInvoices(m.st.CreditCards, m.st.Transactions)
	if len(invoices) == 0 {
		return cli.RenderBox(cli.CardIcon+" Open invoices", cli.SubtleStyle.Render("Nothing to pay"))
	}

	var b strings.Builder
	for i, inv := range invoices {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(inv.Card.Label() + "  " + cli.ExpenseStyle.Render(m.config.Money.Format(inv.Total)))
	}
	return cli.RenderBox(cli.CardIcon+" Open invoices", b.String())
}

func (m Model) renderStatus() string {
	switch {
	case m.syncing:
		return m.spinner.View() + " Syncing..."
	case m.lastErr != nil:
		return cli.FormatError("Sync failed: " + m.lastErr.Error())
	case m.status != "":
		return cli.FormatInfo(m.status)
	}
	return ""
}
