package main

import (
	"testing"

	"github.com/limaJavier/coursetimetabler/internal/config"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solveFlags() *pflag.FlagSet {
	flags := pflag.NewFlagSet("solve", pflag.ContinueOnError)
	flags.IntVar(&timeBudget, "time", 0, "")
	flags.BoolVar(&batch, "batch", false, "")
	flags.IntVar(&workers, "workers", 0, "")
	flags.StringVar(&solverName, "solver", "", "")
	flags.StringVar(&strategy, "strategy", "", "")
	flags.BoolVar(&relaxed, "relaxed", false, "")
	flags.IntVar(&topN, "top", 0, "")
	return flags
}

func TestApplyFlagsKeepsUnsetValues(t *testing.T) {
	//** Arrange
	cfg := config.Default()
	cfg.TimeBudget = 90
	cfg.Solver = "gophersat"

	//** Act
	applied := applyFlags(cfg, solveFlags())

	//** Assert
	assert.Equal(t, cfg, applied)
}

func TestApplyFlagsOverridesSetValues(t *testing.T) {
	//** Arrange
	cfg := config.Default()
	cfg.TimeBudget = 90
	cfg.Relaxed = true
	flags := solveFlags()

	//** Act
	require.NoError(t, flags.Parse([]string{"--time", "30", "--solver", "GOPHERSAT", "--strategy", "Isolated", "--relaxed=false", "--batch", "--top", "2"}))
	applied := applyFlags(cfg, flags)

	//** Assert
	assert.Equal(t, 30, applied.TimeBudget)
	assert.Equal(t, "gophersat", applied.Solver)
	assert.Equal(t, "isolated", applied.Strategy)
	assert.False(t, applied.Relaxed)
	assert.True(t, applied.Batch)
	assert.Equal(t, 2, applied.TopN)
	assert.Equal(t, cfg.Workers, applied.Workers)
	assert.NoError(t, applied.Validate())
}
