package syncer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Veraticus/fintrack/internal/common"
	"github.com/Veraticus/fintrack/internal/model"
	"github.com/Veraticus/fintrack/internal/service"
	"github.com/Veraticus/fintrack/internal/state"
)

// Entity kinds, in reconciliation order.
const (
	KindCategories   = "categories"
	KindAccounts     = "accounts"
	KindCreditCards  = "credit_cards"
	KindTransactions = "transactions"
)

// KindResult is the outcome of reconciling one collection.
type KindResult struct {
	Err      error
	Kind     string
	Inserted int
	Updated  int
	Deleted  int
}

// Result is the outcome of one reconciliation.
type Result struct {
	Kinds    []KindResult
	Duration time.Duration
}

// Inserted returns the number of records inserted remotely.
func (r Result) Inserted() int {
	n := 0
	for _, k := range r.Kinds {
		n += k.Inserted
	}
	return n
}

// Updated returns the number of records updated remotely.
func (r Result) Updated() int {
	n := 0
	for _, k := range r.Kinds {
		n += k.Updated
	}
	return n
}

// Deleted returns the number of records deleted remotely.
func (r Result) Deleted() int {
	n := 0
	for _, k := range r.Kinds {
		n += k.Deleted
	}
	return n
}

// Failed returns the kinds whose reconciliation was abandoned.
func (r Result) Failed() []KindResult {
	var failed []KindResult
	for _, k := range r.Kinds {
		if k.Err != nil {
			failed = append(failed, k)
		}
	}
	return failed
}

// Err joins the errors of every failed kind.
func (r Result) Err() error {
	var errs []error
	for _, k := range r.Failed() {
		errs = append(errs, fmt.Errorf("%s: %w", k.Kind, k.Err))
	}
	return errors.Join(errs...)
}

func (c *Controller) reconcileAll(ctx context.Context, userID string, st state.State) Result {
	return Result{Kinds: []KindResult{
		reconcile(ctx, c.progress, KindCategories, c.remote.Categories(), userID, st.Categories,
			func(v model.Category) string { return v.ID }),
		reconcile(ctx, c.progress, KindAccounts, c.remote.Accounts(), userID, st.Accounts,
			func(v model.Account) string { return v.ID }),
		reconcile(ctx, c.progress, KindCreditCards, c.remote.CreditCards(), userID, st.CreditCards,
			func(v model.CreditCard) string { return v.ID }),
		reconcile(ctx, c.progress, KindTransactions, c.remote.Transactions(), userID, st.Transactions,
			func(v model.Transaction) string { return v.ID }),
	}}
}

// reconcile makes the remote collection equal to local: local records are updated
// when the remote has their id and inserted otherwise, and remote records missing
// locally are deleted. The first failing call abandons the collection for this run.
func reconcile[T any](
	ctx context.Context,
	progress ProgressFunc,
	kind string,
	coll service.Collection[T],
	userID string,
	local []T,
	id func(T) string,
) KindResult {
	result := KindResult{Kind: kind}
	fail := func(op, recordID string, err error) KindResult {
		common.LogError(err, "Remote sync call failed", common.Fields{"kind": kind, "op": op, "id": recordID})
		result.Err = fmt.Errorf("%s %s: %w", op, recordID, err)
		return result
	}

	remote, err := coll.FetchAll(ctx, userID)
	if err != nil {
		return fail("fetch", "", err)
	}

	remoteIDs := make(map[string]struct{}, len(remote))
	for _, r := range remote {
		remoteIDs[id(r)] = struct{}{}
	}
	localIDs := make(map[string]struct{}, len(local))
	for _, l := range local {
		localIDs[id(l)] = struct{}{}
	}

	var stale []string
	for _, r := range remote {
		if _, ok := localIDs[id(r)]; !ok {
			stale = append(stale, id(r))
		}
	}

	total := len(local) + len(stale)
	done := 0
	report := func() {
		done++
		if progress != nil {
			progress(kind, done, total)
		}
	}

	for _, record := range local {
		recordID := id(record)
		if _, ok := remoteIDs[recordID]; ok {
			if _, err := coll.Update(ctx, userID, record); err != nil {
				return fail("update", recordID, err)
			}
			result.Updated++
		} else {
			if _, err := coll.Insert(ctx, userID, record); err != nil {
				return fail("insert", recordID, err)
			}
			result.Inserted++
		}
		report()
	}

	for _, recordID := range stale {
		if err := coll.Delete(ctx, userID, recordID); err != nil {
			return fail("delete", recordID, err)
		}
		result.Deleted++
		report()
	}

	if progress != nil && total == 0 {
		progress(kind, 0, 0)
	}
	return result
}
