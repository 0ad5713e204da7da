package localcache

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/fintrack/internal/common"
	"github.com/Veraticus/fintrack/internal/model"
	"github.com/Veraticus/fintrack/internal/service"
	"github.com/Veraticus/fintrack/internal/state"
)

type snapshotJSON struct {
	UserID       string            `json:"userId,omitempty"`
	Theme        string            `json:"theme"`
	Accounts     []accountJSON     `json:"accounts"`
	CreditCards  []creditCardJSON  `json:"creditCards"`
	Transactions []transactionJSON `json:"transactions"`
	Categories   []categoryJSON    `json:"categories"`
}

type accountJSON struct {
	InitialBalance decimal.Decimal `json:"initialBalance"`
	ID             string          `json:"id"`
	BankName       string          `json:"bankName"`
	AccountNumber  string          `json:"accountNumber"`
	Active         bool            `json:"active"`
}

type creditCardJSON struct {
	InvoiceClosingDay *int   `json:"invoiceClosingDay,omitempty"`
	InvoiceDueDay     *int   `json:"invoiceDueDay,omitempty"`
	ID                string `json:"id"`
	Name              string `json:"name"`
	LastFourDigits    string `json:"lastFourDigits,omitempty"`
	Flag              string `json:"flag"`
	Inactive          bool   `json:"inactive"`
}

type transactionJSON struct {
	Amount          decimal.Decimal `json:"amount"`
	ID              string          `json:"id"`
	AccountID       string          `json:"accountId,omitempty"`
	CreditCardID    string          `json:"creditCardId,omitempty"`
	Category        string          `json:"category"`
	Description     string          `json:"description"`
	Date            string          `json:"date"`
	Type            string          `json:"type"`
	PaidInInvoiceID string          `json:"paidInInvoiceId,omitempty"`
	Paid            bool            `json:"paid,omitempty"`
}

type categoryJSON struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	IsDefault bool   `json:"isDefault"`
}

// EncodeSnapshot serializes the domain collections and theme of s.
func EncodeSnapshot(s state.State) (string, error) {
	out := snapshotJSON{
		UserID:       s.UserID(),
		Theme:        string(s.Theme),
		Accounts:     make([]accountJSON, 0, len(s.Accounts)),
		CreditCards:  make([]creditCardJSON, 0, len(s.CreditCards)),
		Transactions: make([]transactionJSON, 0, len(s.Transactions)),
		Categories:   make([]categoryJSON, 0, len(s.Categories)),
	}
	for _, a := range s.Accounts {
		out.Accounts = append(out.Accounts, accountJSON{
			ID: a.ID, BankName: a.BankName, AccountNumber: a.AccountNumber,
			InitialBalance: a.InitialBalance, Active: a.Active,
		})
	}
	for _, c := range s.CreditCards {
		out.CreditCards = append(out.CreditCards, creditCardJSON{
			ID: c.ID, Name: c.Name, LastFourDigits: c.LastFourDigits, Flag: c.Flag, Inactive: c.Inactive,
			InvoiceClosingDay: c.InvoiceClosingDay, InvoiceDueDay: c.InvoiceDueDay,
		})
	}
	for _, t := range s.Transactions {
		out.Transactions = append(out.Transactions, transactionJSON{
			ID: t.ID, AccountID: t.AccountID, CreditCardID: t.CreditCardID, Category: t.Category,
			Description: t.Description, Date: t.Date.String(), Amount: t.Amount, Type: string(t.Type),
			Paid: t.Paid, PaidInInvoiceID: t.PaidInInvoiceID,
		})
	}
	for _, c := range s.Categories {
		out.Categories = append(out.Categories, categoryJSON{
			ID: c.ID, Name: c.Name, Type: string(c.Type), IsDefault: c.IsDefault,
		})
	}

	data, err := json.Marshal(out)
	if err != nil {
		return "", fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return string(data), nil
}

// Snapshot is a decoded local snapshot.
type Snapshot struct {
	UserID  string
	State   state.State
	Dropped int // Records rejected during decoding
}

// DecodeSnapshot parses a snapshot field by field. Records that fail validation are
// dropped and counted; the remaining ones are kept. Input that is not a JSON object
// yields common.ErrCorruptedState.
func DecodeSnapshot(data string) (Snapshot, error) {
	var root map[string]json.RawMessage
	if err := json.Unmarshal([]byte(data), &root); err != nil {
		return Snapshot{State: state.Initial()}, fmt.Errorf("%w: %w", common.ErrCorruptedState, err)
	}
	if root == nil {
		return Snapshot{State: state.Initial()}, fmt.Errorf("%w: snapshot is null", common.ErrCorruptedState)
	}

	snap := Snapshot{State: state.Initial()}
	if theme, ok := stringField(root, "theme"); ok {
		snap.State.Theme = model.ParseTheme(theme)
	}
	snap.UserID, _ = stringField(root, "userId")

	var dropped int
	snap.State.Accounts, dropped = decodeRecords(root["accounts"], decodeAccount)
	snap.Dropped += dropped
	snap.State.CreditCards, dropped = decodeRecords(root["creditCards"], decodeCreditCard)
	snap.Dropped += dropped
	snap.State.Transactions, dropped = decodeRecords(root["transactions"], decodeTransaction)
	snap.Dropped += dropped
	snap.State.Categories, dropped = decodeRecords(root["categories"], decodeCategory)
	snap.Dropped += dropped

	model.SortByDateDesc(snap.State.Transactions)
	return snap, nil
}

// SaveState writes the snapshot of s to the cache.
func SaveState(cache service.Cache, s state.State) error {
	data, err := EncodeSnapshot(s)
	if err != nil {
		return err
	}
	return cache.Set(KeyState, data)
}

// LoadState reads the snapshot stored in the cache. Any failure yields the initial
// state and ok=false.
func LoadState(cache service.Cache) (Snapshot, bool) {
	data, found, err := cache.Get(KeyState)
	if err != nil || !found {
		return Snapshot{State: state.Initial()}, false
	}

	snap, err := DecodeSnapshot(data)
	if err != nil {
		slog.Warn("Discarding unreadable local snapshot", "error", err)
		return Snapshot{State: state.Initial()}, false
	}
	if snap.Dropped > 0 {
		slog.Warn("Dropped invalid records from local snapshot", "count", snap.Dropped)
	}
	return snap, true
}

type userJSON struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// SaveUser remembers the authenticated user.
func SaveUser(cache service.Cache, user model.User) error {
	data, err := json.Marshal(userJSON{ID: user.ID, Email: user.Email})
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}
	return cache.Set(KeyUser, string(data))
}

// LoadUser returns the remembered user. A malformed entry is treated as absent.
func LoadUser(cache service.Cache) (*model.User, error) {
	data, found, err := cache.Get(KeyUser)
	if err != nil {
		return nil, fmt.Errorf("failed to read user: %w", err)
	}
	if !found {
		return nil, nil
	}

	var u userJSON
	if err := json.Unmarshal([]byte(data), &u); err != nil || strings.TrimSpace(u.ID) == "" {
		slog.Warn("Ignoring malformed cached user", "error", err)
		return nil, nil
	}
	return &model.User{ID: u.ID, Email: u.Email}, nil
}

// SaveTheme stores the theme preference.
func SaveTheme(cache service.Cache, theme model.Theme) error {
	return cache.Set(KeyTheme, string(theme))
}

// LoadTheme returns the stored theme preference, defaulting to light.
func LoadTheme(cache service.Cache) model.Theme {
	v, found, err := cache.Get(KeyTheme)
	if err != nil || !found {
		return model.ThemeLight
	}
	return model.ParseTheme(v)
}

// SetPending records whether the snapshot has changes not yet pushed.
func SetPending(cache service.Cache, pending bool) error {
	if !pending {
		return cache.Delete(KeyPending)
	}
	return cache.Set(KeyPending, "true")
}

// Pending reports whether the snapshot has changes not yet pushed.
func Pending(cache service.Cache) bool {
	v, found, err := cache.Get(KeyPending)
	return err == nil && found && v == "true"
}

func decodeRecords[T any](raw json.RawMessage, decode func(map[string]json.RawMessage) (T, bool)) ([]T, int) {
	if len(raw) == 0 {
		return nil, 0
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, 0
	}

	var out []T
	dropped := 0
	for _, item := range items {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(item, &fields); err != nil || fields == nil {
			dropped++
			continue
		}
		record, ok := decode(fields)
		if !ok {
			dropped++
			continue
		}
		out = append(out, record)
	}
	return out, dropped
}

func decodeAccount(f map[string]json.RawMessage) (model.Account, bool) {
	id, ok := stringField(f, "id")
	if !ok || id == "" {
		return model.Account{}, false
	}
	bank, _ := stringField(f, "bankName")
	number, _ := stringField(f, "accountNumber")
	active, ok := boolField(f, "active")
	if !ok {
		active = true
	}
	return model.Account{
		ID:             id,
		BankName:       bank,
		AccountNumber:  number,
		InitialBalance: decimalField(f, "initialBalance"),
		Active:         active,
	}, true
}

func decodeCreditCard(f map[string]json.RawMessage) (model.CreditCard, bool) {
	id, ok := stringField(f, "id")
	if !ok || id == "" {
		return model.CreditCard{}, false
	}
	name, _ := stringField(f, "name")
	lastFour, _ := stringField(f, "lastFourDigits")
	flag, _ := stringField(f, "flag")
	inactive, _ := boolField(f, "inactive")
	return model.CreditCard{
		ID:                id,
		Name:              name,
		LastFourDigits:    lastFour,
		Flag:              flag,
		Inactive:          inactive,
		InvoiceClosingDay: dayField(f, "invoiceClosingDay"),
		InvoiceDueDay:     dayField(f, "invoiceDueDay"),
	}, true
}

func decodeTransaction(f map[string]json.RawMessage) (model.Transaction, bool) {
	id, ok := stringField(f, "id")
	if !ok || id == "" {
		return model.Transaction{}, false
	}
	typ, _ := stringField(f, "type")
	txnType := model.TransactionType(typ)
	if !txnType.Valid() {
		return model.Transaction{}, false
	}
	rawDate, _ := stringField(f, "date")
	date, err := model.ParseDate(rawDate)
	if err != nil {
		return model.Transaction{}, false
	}
	amount, ok := amountField(f, "amount")
	if !ok {
		return model.Transaction{}, false
	}

	t := model.Transaction{ID: id, Type: txnType, Date: date, Amount: amount}
	t.AccountID, _ = stringField(f, "accountId")
	t.CreditCardID, _ = stringField(f, "creditCardId")
	t.Category, _ = stringField(f, "category")
	t.Description, _ = stringField(f, "description")
	t.PaidInInvoiceID, _ = stringField(f, "paidInInvoiceId")
	t.Paid, _ = boolField(f, "paid")

	if txnType.UsesAccount() && t.AccountID == "" {
		return model.Transaction{}, false
	}
	if !txnType.UsesAccount() && t.CreditCardID == "" {
		return model.Transaction{}, false
	}
	return t, true
}

func decodeCategory(f map[string]json.RawMessage) (model.Category, bool) {
	id, ok := stringField(f, "id")
	if !ok || id == "" {
		return model.Category{}, false
	}
	name, ok := stringField(f, "name")
	if !ok || strings.TrimSpace(name) == "" {
		return model.Category{}, false
	}
	typ, _ := stringField(f, "type")
	catType := model.CategoryType(typ)
	if !catType.Valid() {
		return model.Category{}, false
	}
	isDefault, _ := boolField(f, "isDefault")
	return model.Category{ID: id, Name: name, Type: catType, IsDefault: isDefault}, true
}

func stringField(f map[string]json.RawMessage, key string) (string, bool) {
	raw, ok := f[key]
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

func boolField(f map[string]json.RawMessage, key string) (bool, bool) {
	raw, ok := f[key]
	if !ok {
		return false, false
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err != nil {
		return false, false
	}
	return b, true
}

// amountField accepts a JSON number or a numeric string.
func amountField(f map[string]json.RawMessage, key string) (decimal.Decimal, bool) {
	raw, ok := f[key]
	if !ok || string(raw) == "null" {
		return decimal.Zero, false
	}
	var d decimal.Decimal
	if err := d.UnmarshalJSON(raw); err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// decimalField is amountField with missing or malformed values read as zero.
func decimalField(f map[string]json.RawMessage, key string) decimal.Decimal {
	d, _ := amountField(f, key)
	return d
}

func dayField(f map[string]json.RawMessage, key string) *int {
	raw, ok := f[key]
	if !ok {
		return nil
	}
	var n int
	if err := json.Unmarshal(raw, &n); err != nil || n < 1 || n > 31 {
		return nil
	}
	return &n
}
