package selection_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"icmasure/internal/selection"
)

func TestSelectAllRoundTrip(t *testing.T) {
	page := []int{3, 1, 2}

	s := selection.New().SelectAll(true, page)
	assert.Equal(t, []int{1, 2, 3}, s.IDs())
	assert.Equal(t, selection.HeaderChecked, selection.HeaderFor(s, page))

	s = s.SelectAll(false, page)
	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.IDs())
}

func TestSelectOneIdempotent(t *testing.T) {
	s := selection.New()
	s = s.SelectOne(7, true)
	s = s.SelectOne(7, true)
	assert.Equal(t, []int{7}, s.IDs())

	s = s.SelectOne(7, false)
	s = s.SelectOne(7, false)
	assert.Equal(t, 0, s.Len())
}

func TestSelectOneDoesNotMutateReceiver(t *testing.T) {
	a := selection.New(1, 2)
	b := a.SelectOne(3, true)
	assert.Equal(t, []int{1, 2}, a.IDs())
	assert.Equal(t, []int{1, 2, 3}, b.IDs())
}

func TestReconcileDropsStaleIDs(t *testing.T) {
	s := selection.New(1, 2, 9)
	s = s.Reconcile([]int{1, 2, 3})
	assert.Equal(t, []int{1, 2}, s.IDs())

	s = s.Reconcile(nil)
	assert.Equal(t, 0, s.Len())
}

func TestHeaderState(t *testing.T) {
	page := []int{1, 2, 3}

	assert.Equal(t, selection.HeaderNone, selection.HeaderFor(selection.New(), page))
	assert.Equal(t, selection.HeaderNone, selection.HeaderFor(selection.New(1), nil))
	assert.Equal(t, selection.HeaderIndeterminate, selection.HeaderFor(selection.New(1), page))
	assert.Equal(t, selection.HeaderIndeterminate, selection.HeaderFor(selection.New(1, 2), page))
	assert.Equal(t, selection.HeaderChecked, selection.HeaderFor(selection.New(1, 2, 3), page))

	// ids outside the page do not count toward the header state
	assert.Equal(t, selection.HeaderChecked, selection.HeaderFor(selection.New(1, 2, 3, 99), page))
}
