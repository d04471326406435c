package timetabler

import (
	"context"
	"testing"

	"github.com/limaJavier/coursetimetabler/pkg/sat"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOccurrencesFollowSlotOrder(t *testing.T) {
	//** Arrange
	university := mustUniversity(t, singleGroupRaw(7, 7, 6))
	builder := sat.NewBuilder()
	vm, err := newVariableModel(university, builder, true)
	require.NoError(t, err)
	for _, constraint := range hardConstraints(vm, false) {
		constraint(vm)
	}

	//** Act
	solution, err := sat.NewGiniSolver().Solve(context.Background(), builder.Build())

	//** Assert
	require.NoError(t, err)
	require.NotNil(t, solution)
	require.Len(t, vm.pairs, 1)
	slots := lo.Map(vm.pairs[0].occurrences, func(o int, _ int) int {
		return chosen(solution, vm.occurrences[o].slots)
	})
	require.Len(t, slots, 6)
	for i := 1; i < len(slots); i++ {
		assert.Less(t, slots[i-1], slots[i])
	}
	for _, slot := range slots {
		assert.False(t, university.Forbidden(uint64(slot)), "slot %d", slot)
	}
}

func TestAllowedSlotsSkipForbidden(t *testing.T) {
	//** Arrange
	university := mustUniversity(t, singleGroupRaw(7, 7, 2))

	//** Act
	vm, err := newVariableModel(university, sat.NewBuilder(), false)

	//** Assert
	require.NoError(t, err)
	allowed := vm.allowedSlots()
	assert.NotEmpty(t, allowed)
	assert.Less(t, len(allowed), int(university.TotalSlots()))
	for _, slot := range allowed {
		assert.False(t, university.Forbidden(slot))
	}
	assert.Equal(t, allowed, vm.allowedSlots())
}
