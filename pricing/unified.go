package pricing

import (
	"github.com/stratlab/optstrat/model"
	"github.com/stratlab/optstrat/opterr"
)

// EngineKind selects the numeric machinery behind Price.
type EngineKind int

const (
	EngineClosedForm EngineKind = iota
	EngineBinomial
	EngineTelegraph
	EngineMonteCarlo
)

// Engine is a pricing engine selection plus its tuning knobs.
type Engine struct {
	Kind  EngineKind
	Steps uint32
	Paths uint32
	Seed  uint64
}

func ClosedFormBS() Engine { return Engine{Kind: EngineClosedForm} }

func BinomialEngine(steps uint32) Engine { return Engine{Kind: EngineBinomial, Steps: steps} }

func TelegraphEngine(steps uint32, seed uint64) Engine {
	return Engine{Kind: EngineTelegraph, Steps: steps, Seed: seed}
}

func MonteCarloEngine(paths uint32, seed uint64) Engine {
	return Engine{Kind: EngineMonteCarlo, Paths: paths, Seed: seed}
}

// Price is the unified entry point: it dispatches on the contract
// family and the requested engine and returns the unsigned per-unit
// premium. Unsupported family/engine pairs fail rather than silently
// approximate.
func Price(o *model.Options, engine Engine) (model.Positive, error) {
	switch engine.Kind {
	case EngineClosedForm:
		return closedForm(o)
	case EngineBinomial:
		switch o.Type.Kind {
		case model.European, model.American, model.Bermudan:
			return Binomial(o, engine.Steps)
		default:
			return model.PZero, &opterr.PricingError{
				Method: "binomial",
				Reason: "unsupported option kind " + o.Type.Kind.String(),
			}
		}
	case EngineTelegraph:
		switch o.Type.Kind {
		case model.European, model.American:
			return Telegraph(o, engine.Steps, engine.Seed)
		default:
			return model.PZero, &opterr.PricingError{
				Method: "telegraph",
				Reason: "unsupported option kind " + o.Type.Kind.String(),
			}
		}
	case EngineMonteCarlo:
		return MonteCarlo(o, engine.Paths, engine.Seed)
	}
	return model.PZero, &opterr.PricingError{Method: "price", Reason: "unknown engine"}
}

func closedForm(o *model.Options) (model.Positive, error) {
	switch o.Type.Kind {
	case model.European:
		return BlackScholes(o)
	case model.American, model.Bermudan:
		// No exact closed form; the standard tree stands in.
		return Binomial(o, 500)
	case model.BarrierOption:
		return BarrierPrice(o)
	case model.Asian:
		return AsianPrice(o)
	case model.Binary:
		return BinaryPrice(o)
	case model.Lookback:
		return LookbackPrice(o)
	case model.Cliquet:
		return CliquetPrice(o)
	case model.Rainbow:
		return RainbowPrice(o)
	case model.Quanto:
		return QuantoPrice(o)
	case model.SpreadOption:
		return SpreadPrice(o)
	case model.Exchange:
		return ExchangePrice(o)
	case model.Power:
		return PowerPrice(o)
	case model.Compound:
		return CompoundPrice(o)
	}
	return model.PZero, &opterr.PricingError{
		Method: "closed_form",
		Reason: "unsupported option kind " + o.Type.Kind.String(),
	}
}
