package sim

import (
	"github.com/stratlab/optstrat/chain"
	"github.com/stratlab/optstrat/model"
	"github.com/stratlab/optstrat/strategy"
)

// PositiveLift adapts walk prices to model.Positive values.
func PositiveLift(price float64) (model.Positive, error) {
	return model.NewPositive(price)
}

// ChainStep carries a full option chain as the walked value; the
// price the kernels see is the chain's underlying.
type ChainStep struct {
	Chain *chain.OptionChain
}

func (c ChainStep) Float64() float64 {
	return c.Chain.UnderlyingPrice.Float64()
}

// ChainLift builds a lift that regenerates the chain at each walked
// underlying price. Skew, smile and spread are frozen from the
// initial chain, so every step shares the same vol surface shape.
func ChainLift(initial *chain.OptionChain) (func(price float64) (ChainStep, error), error) {
	params, err := initial.ToBuildParams()
	if err != nil {
		return nil, err
	}
	return func(price float64) (ChainStep, error) {
		underlying, uerr := model.NewPositive(price)
		if uerr != nil {
			return ChainStep{}, uerr
		}
		p := *params
		pp := p.PriceParams
		pp.UnderlyingPrice = &underlying
		p.PriceParams = pp
		c, berr := chain.BuildChain(&p)
		if berr != nil {
			return ChainStep{}, berr
		}
		return ChainStep{Chain: c}, nil
	}, nil
}

// ReoptimizingChainLift additionally re-optimizes a strategy's
// strikes against each regenerated chain.
func ReoptimizingChainLift(initial *chain.OptionChain, st strategy.Optimizable,
	side strategy.FindOptimalSide) (func(price float64) (ChainStep, error), error) {
	lift, err := ChainLift(initial)
	if err != nil {
		return nil, err
	}
	return func(price float64) (ChainStep, error) {
		step, lerr := lift(price)
		if lerr != nil {
			return ChainStep{}, lerr
		}
		if oerr := st.GetBestArea(step.Chain, side); oerr != nil {
			return ChainStep{}, oerr
		}
		return step, nil
	}, nil
}
