// Package ofx imports OFX/QFX bank and credit card statements as transactions.
package ofx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"

	"github.com/Veraticus/fintrack/internal/common"
	"github.com/Veraticus/fintrack/internal/model"
)

// InvestmentIncomeCategory receives interest and dividend credits.
const InvestmentIncomeCategory = "Investimentos"

var (
	severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	tagFixRegex   = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

// Parser implements OFX/QFX file parsing.
type Parser struct{}

// NewParser creates a new OFX parser.
func NewParser() *Parser {
	return &Parser{}
}

// preprocessOFX fixes common formatting issues in OFX files.
func (p *Parser) preprocessOFX(content string) string {
	// Trim any leading whitespace or blank lines before the header
	content = strings.TrimLeft(content, " \t\r\n")

	// Fix mixed-case SEVERITY values (should be INFO, WARN, or ERROR)
	content = severityRegex.ReplaceAllStringFunc(content, func(match string) string {
		return strings.ToUpper(match)
	})

	// Fix missing closing angle brackets in SGML-style OFX files
	// Match opening tags that are missing their closing bracket
	// Pattern: <TAGNAME at end of line (no > and no content after tag)
	content = tagFixRegex.ReplaceAllString(content, "$1>")

	return content
}

// Target is the account or card the statement lines are recorded against. Exactly
// one of AccountID and CreditCardID is set.
type Target struct {
	AccountID    string
	CreditCardID string
}

func (t Target) id() string {
	if t.CreditCardID != "" {
		return t.CreditCardID
	}
	return t.AccountID
}

// ParseFile parses an OFX/QFX file into transactions posted to target. Bank debits
// become expenses and credits become income. Card debits become card charges; card
// credits are skipped since payments are recorded with PayInvoice. Ids derive from
// the FITID so importing the same file twice updates instead of duplicating.
func (p *Parser) ParseFile(ctx context.Context, reader io.Reader, target Target) ([]model.Transaction, error) {
	if (target.AccountID == "") == (target.CreditCardID == "") {
		return nil, fmt.Errorf("%w: import needs exactly one account or card", common.ErrInvalidInput)
	}

	resp, err := p.parse(reader)
	if err != nil {
		return nil, err
	}

	var transactions []model.Transaction
	var bankStmts, ccStmts, skipped int

	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok && stmt.BankTranList != nil {
			bankStmts++
			for _, ofxTx := range stmt.BankTranList.Transactions {
				tx, ok := p.convertTransaction(ofxTx, target)
				if !ok {
					skipped++
					continue
				}
				transactions = append(transactions, tx)
			}
		}
	}

	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok && stmt.BankTranList != nil {
			ccStmts++
			for _, ofxTx := range stmt.BankTranList.Transactions {
				tx, ok := p.convertTransaction(ofxTx, target)
				if !ok {
					skipped++
					continue
				}
				transactions = append(transactions, tx)
			}
		}
	}

	slog.Info("Parsed OFX file",
		"total_transactions", len(transactions),
		"skipped", skipped,
		"bank_statements", bankStmts,
		"cc_statements", ccStmts)

	return transactions, nil
}

func (p *Parser) parse(reader io.Reader) (*ofxgo.Response, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(p.preprocessOFX(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}
	return resp, nil
}

// convertTransaction converts a statement line. It reports false for lines that are
// not imported: zero amounts and credits on a card.
func (p *Parser) convertTransaction(ofxTx ofxgo.Transaction, target Target) (model.Transaction, bool) {
	amount, err := decimal.NewFromString(ofxTx.TrnAmt.FloatString(2))
	if err != nil || amount.IsZero() {
		return model.Transaction{}, false
	}

	tx := model.Transaction{
		ID:          "ofx-" + target.id() + "-" + string(ofxTx.FiTID),
		Date:        model.DateOf(ofxTx.DtPosted.Time),
		Description: p.extractMerchantName(ofxTx),
		Amount:      amount.Abs(),
	}

	switch {
	case target.CreditCardID != "":
		if amount.IsPositive() {
			return model.Transaction{}, false
		}
		tx.Type = model.TransactionTypeCreditCardExpense
		tx.CreditCardID = target.CreditCardID
	case amount.IsPositive():
		tx.Type = model.TransactionTypeIncome
		tx.AccountID = target.AccountID
	default:
		tx.Type = model.TransactionTypeExpense
		tx.AccountID = target.AccountID
	}

	tx.Category = model.FallbackCategory(tx.Type.CategoryType())
	if tx.Type == model.TransactionTypeIncome &&
		(ofxTx.TrnType == ofxgo.TrnTypeInt || ofxTx.TrnType == ofxgo.TrnTypeDiv) {
		tx.Category = InvestmentIncomeCategory
	}

	return tx, true
}

// extractMerchantName tries to get a clean merchant name from OFX data.
func (p *Parser) extractMerchantName(tx ofxgo.Transaction) string {
	// Prefer PAYEE if available (cleaner merchant name)
	if tx.Payee != nil && tx.Payee.Name != "" {
		return string(tx.Payee.Name)
	}

	// Fall back to NAME field
	name := string(tx.Name)

	// Use MEMO field if NAME is generic
	if tx.Memo != "" && isGenericDescription(name) {
		// Sometimes MEMO has better merchant info
		name = string(tx.Memo)
	}

	// Basic cleanup
	name = strings.TrimSpace(name)

	// Remove common prefixes
	prefixes := []string{
		"POS PURCHASE ",
		"PURCHASE AUTHORIZED ON ",
		"DEBIT CARD PURCHASE ",
		"ACH DEBIT ",
		"CHECK CARD ",
		"VISA PURCHASE ",
		"MC PURCHASE ",
		"DEBIT PURCHASE ",
	}

	for _, prefix := range prefixes {
		if strings.HasPrefix(strings.ToUpper(name), prefix) {
			name = name[len(prefix):]
			break
		}
	}

	// Clean up date patterns like "MM/DD" at the beginning
	if len(name) > 5 && name[2] == '/' && name[5] == ' ' {
		name = strings.TrimSpace(name[6:])
	}

	return name
}

// isGenericDescription checks if a transaction name is too generic.
func isGenericDescription(name string) bool {
	generic := []string{
		"DEBIT",
		"CREDIT",
		"PURCHASE",
		"PAYMENT",
		"POS TRANSACTION",
		"CARD PURCHASE",
	}

	upperName := strings.ToUpper(name)
	for _, g := range generic {
		if upperName == g {
			return true
		}
	}
	return false
}

// GetAccounts extracts unique account IDs from the OFX file.
func (p *Parser) GetAccounts(ctx context.Context, reader io.Reader) ([]string, error) {
	resp, err := p.parse(reader)
	if err != nil {
		return nil, err
	}

	accountMap := make(map[string]bool)

	// Bank accounts
	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok {
			if stmt.BankAcctFrom.AcctID != "" {
				accountMap[string(stmt.BankAcctFrom.AcctID)] = true
			}
		}
	}

	// Credit card accounts
	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok {
			if stmt.CCAcctFrom.AcctID != "" {
				accountMap[string(stmt.CCAcctFrom.AcctID)] = true
			}
		}
	}

	accounts := make([]string, 0, len(accountMap))
	for acct := range accountMap {
		accounts = append(accounts, acct)
	}
	sort.Strings(accounts)

	return accounts, nil
}
