package settings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv(EnvRiskFreeRate, "")
	t.Setenv(EnvDividendYield, "")
	t.Setenv(EnvSimSeed, "")
	t.Setenv(EnvChainSize, "")

	s := Load()
	assert.InDelta(t, DefaultRiskFreeRate, s.RiskFreeRate.InexactFloat64(), 1e-12)
	assert.True(t, s.DividendYield.IsZero())
	assert.EqualValues(t, DefaultSimSeed, s.SimSeed)
	assert.Equal(t, DefaultChainSize, s.ChainSize)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv(EnvRiskFreeRate, "0.0425")
	t.Setenv(EnvDividendYield, "0.013")
	t.Setenv(EnvSimSeed, "987654")
	t.Setenv(EnvChainSize, "25")

	s := Load()
	assert.InDelta(t, 0.0425, s.RiskFreeRate.InexactFloat64(), 1e-12)
	assert.InDelta(t, 0.013, s.DividendYield.Float64(), 1e-12)
	assert.EqualValues(t, 987654, s.SimSeed)
	assert.Equal(t, 25, s.ChainSize)
}

func TestMalformedValuesFallBack(t *testing.T) {
	t.Setenv(EnvRiskFreeRate, "not-a-rate")
	t.Setenv(EnvSimSeed, "-3")
	t.Setenv(EnvChainSize, "0")

	s := Load()
	assert.InDelta(t, DefaultRiskFreeRate, s.RiskFreeRate.InexactFloat64(), 1e-12)
	assert.EqualValues(t, DefaultSimSeed, s.SimSeed)
	assert.Equal(t, DefaultChainSize, s.ChainSize)
}
