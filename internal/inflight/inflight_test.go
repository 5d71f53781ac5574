package inflight_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"icmasure/internal/inflight"
)

func TestGuardRefusesSecondAction(t *testing.T) {
	g := inflight.NewGuard()

	assert.True(t, g.TryAcquire(1))
	assert.False(t, g.TryAcquire(1), "second action while one is outstanding must be refused")

	// a different admin is unaffected
	assert.True(t, g.TryAcquire(2))

	g.Release(1)
	assert.True(t, g.TryAcquire(1))
}
