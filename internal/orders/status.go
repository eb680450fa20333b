package orders

type Status string

const (
	StatusPending   Status = "pending"
	StatusVerifying Status = "verifying"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusVerifying, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// StockEffect is the reconciliation an admin status change applies to the
// variants of the order's lines. The decision depends only on the stored
// old status versus the requested new one, so replaying the same
// transition is a no-op.
type StockEffect int

const (
	EffectNone StockEffect = iota
	// EffectCredit returns every line's qty to stock.
	EffectCredit
	// EffectDebit takes every line's qty from stock and fails the whole
	// transition if any variant cannot cover it.
	EffectDebit
)

func TransitionEffect(old, next Status) StockEffect {
	switch {
	case next == StatusCancelled && old != StatusCancelled:
		return EffectCredit
	case next == StatusCompleted && old != StatusCompleted:
		return EffectDebit
	case old == StatusCompleted && next != StatusCompleted:
		return EffectCredit
	}
	return EffectNone
}
