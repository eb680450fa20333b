package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusValid(t *testing.T) {
	for _, s := range []Status{StatusPending, StatusVerifying, StatusCompleted, StatusCancelled} {
		assert.True(t, s.Valid(), string(s))
	}
	assert.False(t, Status("shipped").Valid())
	assert.False(t, Status("").Valid())
}

func TestTransitionEffect(t *testing.T) {
	testCases := []struct {
		name string
		old  Status
		next Status
		want StockEffect
	}{
		{"pending to cancelled credits", StatusPending, StatusCancelled, EffectCredit},
		{"verifying to cancelled credits", StatusVerifying, StatusCancelled, EffectCredit},
		{"completed to cancelled credits once", StatusCompleted, StatusCancelled, EffectCredit},
		{"pending to completed debits", StatusPending, StatusCompleted, EffectDebit},
		{"verifying to completed debits", StatusVerifying, StatusCompleted, EffectDebit},
		{"cancelled to completed debits", StatusCancelled, StatusCompleted, EffectDebit},
		{"completed back to pending credits", StatusCompleted, StatusPending, EffectCredit},
		{"completed back to verifying credits", StatusCompleted, StatusVerifying, EffectCredit},
		{"pending to verifying no effect", StatusPending, StatusVerifying, EffectNone},
		{"verifying to pending no effect", StatusVerifying, StatusPending, EffectNone},
		// idempotence: replaying a transition the order already holds
		{"cancelled to cancelled no double credit", StatusCancelled, StatusCancelled, EffectNone},
		{"completed to completed no double debit", StatusCompleted, StatusCompleted, EffectNone},
		{"pending to pending no effect", StatusPending, StatusPending, EffectNone},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, TransitionEffect(tc.old, tc.next))
		})
	}
}
