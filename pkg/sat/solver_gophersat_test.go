package sat

import (
	"testing"

	"github.com/crillab/gophersat/solver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSolveRecoveredReportsPanic(t *testing.T) {
	//** Arrange
	solve := func() solver.Status {
		panic("index out of range [3] with length 3")
	}

	//** Act
	_, err := solveRecovered(solve)

	//** Assert
	require.Error(t, err)
	assert.Contains(t, err.Error(), "index out of range")
}

func TestSolveRecoveredKeepsStatus(t *testing.T) {
	//** Act
	status, err := solveRecovered(func() solver.Status { return solver.Unsat })

	//** Assert
	require.NoError(t, err)
	assert.Equal(t, solver.Unsat, status)
}
