package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/Veraticus/fintrack/internal/common"
	"github.com/Veraticus/fintrack/internal/model"
	"github.com/Veraticus/fintrack/internal/service"
)

// Collection names accepted by MemoryRemote.FailOn.
const (
	KindAccounts     = "accounts"
	KindCreditCards  = "credit_cards"
	KindTransactions = "transactions"
	KindCategories   = "categories"
)

// Operation names accepted by MemoryRemote.FailOn.
const (
	OpFetch  = "fetch"
	OpInsert = "insert"
	OpUpdate = "update"
	OpDelete = "delete"
)

// MemoryRemote is a service.RemoteStore and service.UserStore kept in memory. It
// counts calls and can be told to fail specific operations.
type MemoryRemote struct {
	failures map[string]error
	calls    map[string]int
	records  map[string]map[string]map[string]any // kind -> user -> id -> record
	order    map[string]map[string][]string       // kind -> user -> ids in insertion order
	users    map[string]service.UserRecord
	block    chan struct{}
	mu       sync.Mutex
}

var (
	_ service.RemoteStore = (*MemoryRemote)(nil)
	_ service.UserStore   = (*MemoryRemote)(nil)
)

// NewMemoryRemote returns an empty store.
func NewMemoryRemote() *MemoryRemote {
	return &MemoryRemote{
		failures: make(map[string]error),
		calls:    make(map[string]int),
		records:  make(map[string]map[string]map[string]any),
		order:    make(map[string]map[string][]string),
		users:    make(map[string]service.UserRecord),
	}
}

// FailOn makes every call of op on kind return err. A nil err clears the failure.
func (m *MemoryRemote) FailOn(kind, op string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := kind + "." + op
	if err == nil {
		delete(m.failures, key)
		return
	}
	m.failures[key] = err
}

// Calls returns how many times op was called on kind.
func (m *MemoryRemote) Calls(kind, op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[kind+"."+op]
}

// ResetCalls zeroes the call counters.
func (m *MemoryRemote) ResetCalls() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = make(map[string]int)
}

// Block makes every subsequent call wait until the returned function is called.
func (m *MemoryRemote) Block() (release func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch := make(chan struct{})
	m.block = ch
	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			m.block = nil
			m.mu.Unlock()
			close(ch)
		})
	}
}

// Accounts returns the accounts collection.
func (m *MemoryRemote) Accounts() service.Collection[model.Account] {
	return memoryCollection[model.Account]{m: m, kind: KindAccounts, id: func(a model.Account) string { return a.ID }}
}

// CreditCards returns the credit cards collection.
func (m *MemoryRemote) CreditCards() service.Collection[model.CreditCard] {
	return memoryCollection[model.CreditCard]{m: m, kind: KindCreditCards, id: func(c model.CreditCard) string { return c.ID }}
}

// Transactions returns the transactions collection.
func (m *MemoryRemote) Transactions() service.Collection[model.Transaction] {
	return memoryCollection[model.Transaction]{m: m, kind: KindTransactions, id: func(t model.Transaction) string { return t.ID }}
}

// Categories returns the categories collection.
func (m *MemoryRemote) Categories() service.Collection[model.Category] {
	return memoryCollection[model.Category]{m: m, kind: KindCategories, id: func(c model.Category) string { return c.ID }}
}

// CreateUser stores a user with a generated id.
func (m *MemoryRemote) CreateUser(ctx context.Context, email, passwordHash string) (model.User, error) {
	if err := m.begin(ctx, "users", OpInsert); err != nil {
		return model.User{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	email = strings.ToLower(strings.TrimSpace(email))
	if _, ok := m.users[email]; ok {
		return model.User{}, fmt.Errorf("%s: %w", email, common.ErrEmailTaken)
	}
	user := model.User{ID: model.NewID(), Email: email}
	m.users[email] = service.UserRecord{User: user, PasswordHash: passwordHash}
	return user, nil
}

// FindUserByEmail looks up a user.
func (m *MemoryRemote) FindUserByEmail(ctx context.Context, email string) (service.UserRecord, error) {
	if err := m.begin(ctx, "users", OpFetch); err != nil {
		return service.UserRecord{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.users[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return service.UserRecord{}, fmt.Errorf("user %q: %w", email, common.ErrNotFound)
	}
	return rec, nil
}

// begin counts the call, waits while blocked and returns any injected failure.
func (m *MemoryRemote) begin(ctx context.Context, kind, op string) error {
	m.mu.Lock()
	key := kind + "." + op
	m.calls[key]++
	block := m.block
	m.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.failures[key]
}

type memoryCollection[T any] struct {
	m    *MemoryRemote
	id   func(T) string
	kind string
}

func (c memoryCollection[T]) FetchAll(ctx context.Context, userID string) ([]T, error) {
	if err := c.m.begin(ctx, c.kind, OpFetch); err != nil {
		return nil, err
	}
	c.m.mu.Lock()
	defer c.m.mu.Unlock()

	var out []T
	for _, id := range c.m.order[c.kind][userID] {
		out = append(out, c.m.records[c.kind][userID][id].(T))
	}
	return out, nil
}

func (c memoryCollection[T]) Insert(ctx context.Context, userID string, record T) (T, error) {
	var zero T
	if err := c.m.begin(ctx, c.kind, OpInsert); err != nil {
		return zero, err
	}
	c.m.mu.Lock()
	defer c.m.mu.Unlock()

	id := c.id(record)
	byUser := c.userRecords(userID)
	if _, ok := byUser[id]; ok {
		return zero, fmt.Errorf("%s %q: %w", c.kind, id, common.ErrDuplicateEntry)
	}
	byUser[id] = record
	c.m.order[c.kind][userID] = append(c.m.order[c.kind][userID], id)
	return record, nil
}

func (c memoryCollection[T]) Update(ctx context.Context, userID string, record T) (T, error) {
	var zero T
	if err := c.m.begin(ctx, c.kind, OpUpdate); err != nil {
		return zero, err
	}
	c.m.mu.Lock()
	defer c.m.mu.Unlock()

	id := c.id(record)
	byUser := c.userRecords(userID)
	if _, ok := byUser[id]; !ok {
		return zero, fmt.Errorf("%s %q: %w", c.kind, id, common.ErrNotFound)
	}
	byUser[id] = record
	return record, nil
}

func (c memoryCollection[T]) Delete(ctx context.Context, userID, id string) error {
	if err := c.m.begin(ctx, c.kind, OpDelete); err != nil {
		return err
	}
	c.m.mu.Lock()
	defer c.m.mu.Unlock()

	byUser := c.userRecords(userID)
	if _, ok := byUser[id]; !ok {
		return fmt.Errorf("%s %q: %w", c.kind, id, common.ErrNotFound)
	}
	delete(byUser, id)
	ids := c.m.order[c.kind][userID]
	for i, existing := range ids {
		if existing == id {
			c.m.order[c.kind][userID] = append(ids[:i:i], ids[i+1:]...)
			break
		}
	}
	return nil
}

// userRecords returns the record map of userID, creating it. Callers hold the lock.
func (c memoryCollection[T]) userRecords(userID string) map[string]any {
	if c.m.records[c.kind] == nil {
		c.m.records[c.kind] = make(map[string]map[string]any)
		c.m.order[c.kind] = make(map[string][]string)
	}
	if c.m.records[c.kind][userID] == nil {
		c.m.records[c.kind][userID] = make(map[string]any)
	}
	return c.m.records[c.kind][userID]
}
