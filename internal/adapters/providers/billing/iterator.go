package billing

import (
	"github.com/nagoyameshi/backend/internal/domain/entities"
	"github.com/nagoyameshi/backend/internal/domain/providers"
)

// SliceIterator iterates an in-memory subscription list and then reports err
type SliceIterator struct {
	subs []*entities.BillingSubscription
	err  error
	pos  int
}

// NewSliceIterator returns an iterator over subs. A non-nil err stops
// iteration immediately, as a failed first page would.
func NewSliceIterator(subs []*entities.BillingSubscription, err error) providers.SubscriptionIterator {
	return &SliceIterator{subs: subs, err: err, pos: -1}
}

// Next advances the iterator
func (i *SliceIterator) Next() bool {
	if i.err != nil {
		return false
	}
	i.pos++
	return i.pos < len(i.subs)
}

// Subscription returns the current element
func (i *SliceIterator) Subscription() *entities.BillingSubscription {
	if i.pos < 0 || i.pos >= len(i.subs) {
		return nil
	}
	return i.subs[i.pos]
}

// Err returns the lookup error, if any
func (i *SliceIterator) Err() error {
	return i.err
}
