package main

import (
	"fmt"
	"log"

	"github.com/stratlab/optstrat/chain"
	"github.com/stratlab/optstrat/model"
	"github.com/stratlab/optstrat/settings"
	"github.com/stratlab/optstrat/sim"
	"github.com/stratlab/optstrat/strategy"
)

// A small end-to-end tour: synthesize a chain, pick the best iron
// condor on it, check delta exposure, then stress the result along
// simulated price paths.
func main() {
	cfg := settings.Load()

	underlying := model.MustPositive(5781.88)
	expiration := model.Days(model.MustPositive(30))
	interval := model.MustPositive(25)
	ch, err := chain.BuildChain(&chain.OptionChainBuildParams{
		Symbol:            "SP500",
		ChainSize:         cfg.ChainSize,
		StrikeInterval:    &interval,
		Spread:            model.MustPositive(0.1),
		DecimalPlaces:     2,
		ImpliedVolatility: model.MustPositive(0.18),
		PriceParams: chain.OptionDataPriceParams{
			UnderlyingPrice: &underlying,
			ExpirationDate:  &expiration,
			RiskFreeRate:    &cfg.RiskFreeRate,
			DividendYield:   &cfg.DividendYield,
		},
	})
	if err != nil {
		log.Fatalf("build chain: %v", err)
	}
	fmt.Printf("chain %s: %d strikes\n", ch.GetTitle(), ch.Len())

	strategyCfg := strategy.Config{
		Symbol:            "SP500",
		UnderlyingPrice:   underlying,
		Expiration:        expiration,
		ImpliedVolatility: model.MustPositive(0.18),
		RiskFreeRate:      cfg.RiskFreeRate,
		DividendYield:     cfg.DividendYield,
		Quantity:          model.POne,
	}
	condor, err := strategy.NewIronCondor(strategyCfg,
		model.PZero, model.PZero, model.PZero, model.PZero,
		model.PZero, model.PZero, model.PZero, model.PZero,
		[4]strategy.LegFees{{}, {}, {}, {}})
	if err != nil {
		log.Fatalf("iron condor: %v", err)
	}
	if err := condor.GetBestRatio(ch, strategy.CenterSide()); err != nil {
		log.Fatalf("optimize: %v", err)
	}
	for _, p := range condor.GetPositions() {
		fmt.Printf("  %-5s %-4s K=%s premium=%s\n",
			p.Option.Side, p.Option.Style, p.Option.StrikePrice, p.Premium.StringFixed(2))
	}
	if ratio, err := condor.GetProfitRatio(); err == nil {
		fmt.Printf("profit ratio: %s\n", ratio.StringFixed(2))
	}
	if info, err := condor.DeltaNeutrality(); err == nil {
		fmt.Printf("net delta: %s\n", info.NetDelta.StringFixed(4))
	}

	x := sim.NewXstep(model.POne, model.Day, expiration)
	params := &sim.WalkParams[model.Positive]{
		Size:     21,
		InitStep: sim.NewStep(x, underlying),
		Walk:     sim.NewGeometricBrownianWalk(1.0/252, cfg.RiskFreeRate.InexactFloat64(), 0.18),
		Rng:      sim.NewRng(cfg.SimSeed),
		Lift:     sim.PositiveLift,
	}
	simulator, err := sim.NewSimulator("SP500 GBM", 100, params, nil)
	if err != nil {
		log.Fatalf("simulator: %v", err)
	}
	result, err := simulator.SimulateStrategy(condor)
	if err != nil {
		log.Fatalf("simulate: %v", err)
	}
	fmt.Printf("simulated pnl: total=%.2f maxDD=%.2f winRate=%.2f sharpe=%.3f\n",
		result.TotalPnL, result.MaxDrawdown, result.WinRate, result.Sharpe)
}
