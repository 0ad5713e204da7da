package remote

import (
	"context"
	"fmt"
	"net/url"

	"github.com/Veraticus/fintrack/internal/common"
)

// row is the wire form of one record.
type row[T any] interface {
	model() (T, error)
	recordID() string
}

// collection implements service.Collection for one table.
type collection[T any, R row[T]] struct {
	client *Client
	toRow  func(userID string, record T) R
	table  string
	order  string
}

func (c *collection[T, R]) FetchAll(ctx context.Context, userID string) ([]T, error) {
	query := url.Values{}
	query.Set("select", "*")
	query.Set("user_id", eq(userID))
	query.Set("order", c.order)

	var rows []R
	if err := c.client.do(ctx, "GET", c.table, query, nil, &rows); err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", c.table, err)
	}
	return decodeRows[T](c.table, rows)
}

func (c *collection[T, R]) Insert(ctx context.Context, userID string, record T) (T, error) {
	var zero T
	r := c.toRow(userID, record)

	var rows []R
	if err := c.client.do(ctx, "POST", c.table, nil, r, &rows); err != nil {
		return zero, fmt.Errorf("failed to insert into %s: %w", c.table, err)
	}
	return single[T](c.table, r.recordID(), rows)
}

func (c *collection[T, R]) Update(ctx context.Context, userID string, record T) (T, error) {
	var zero T
	r := c.toRow(userID, record)
	query := url.Values{}
	query.Set("id", eq(r.recordID()))
	query.Set("user_id", eq(userID))

	var rows []R
	if err := c.client.do(ctx, "PATCH", c.table, query, r, &rows); err != nil {
		return zero, fmt.Errorf("failed to update %s: %w", c.table, err)
	}
	return single[T](c.table, r.recordID(), rows)
}

func (c *collection[T, R]) Delete(ctx context.Context, userID, id string) error {
	query := url.Values{}
	query.Set("id", eq(id))
	query.Set("user_id", eq(userID))

	if err := c.client.do(ctx, "DELETE", c.table, query, nil, nil); err != nil {
		return fmt.Errorf("failed to delete from %s: %w", c.table, err)
	}
	return nil
}

// decodeRows converts rows to records. A row that does not decode fails the whole
// fetch, so callers never mistake a malformed row for a missing one.
func decodeRows[T any, R row[T]](table string, rows []R) ([]T, error) {
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		record, err := r.model()
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s row %q: %w", table, r.recordID(), err)
		}
		out = append(out, record)
	}
	return out, nil
}

func single[T any, R row[T]](table, id string, rows []R) (T, error) {
	var zero T
	if len(rows) == 0 {
		return zero, fmt.Errorf("%s %q: %w", table, id, common.ErrNotFound)
	}
	return rows[0].model()
}
