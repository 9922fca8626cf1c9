package model

import "github.com/shopspring/decimal"

// OptionStyle is the payout style of a single contract.
type OptionStyle int

const (
	Call OptionStyle = iota
	Put
)

func (s OptionStyle) String() string {
	if s == Call {
		return "call"
	}
	return "put"
}

// Side is the direction of a position.
type Side int

const (
	Long Side = iota
	Short
)

func (s Side) String() string {
	if s == Long {
		return "long"
	}
	return "short"
}

// Sign is +1 for long legs and -1 for short legs.
func (s Side) Sign() decimal.Decimal {
	if s == Long {
		return decimal.NewFromInt(1)
	}
	return decimal.NewFromInt(-1)
}

// Action is a trade direction used by delta adjustments.
type Action int

const (
	Buy Action = iota
	Sell
)

func (a Action) String() string {
	if a == Buy {
		return "buy"
	}
	return "sell"
}

// OptionKind selects the exercise/payout family of a contract.
type OptionKind int

const (
	European OptionKind = iota
	American
	Bermudan
	BarrierOption
	Asian
	Binary
	Lookback
	Cliquet
	Rainbow
	Quanto
	SpreadOption
	Exchange
	Power
	Compound
)

func (k OptionKind) String() string {
	switch k {
	case European:
		return "european"
	case American:
		return "american"
	case Bermudan:
		return "bermudan"
	case BarrierOption:
		return "barrier"
	case Asian:
		return "asian"
	case Binary:
		return "binary"
	case Lookback:
		return "lookback"
	case Cliquet:
		return "cliquet"
	case Rainbow:
		return "rainbow"
	case Quanto:
		return "quanto"
	case SpreadOption:
		return "spread"
	case Exchange:
		return "exchange"
	case Power:
		return "power"
	case Compound:
		return "compound"
	}
	return "unknown"
}

// BarrierKind distinguishes knock-in from knock-out barriers.
type BarrierKind int

const (
	UpAndIn BarrierKind = iota
	UpAndOut
	DownAndIn
	DownAndOut
)

// AveragingType selects arithmetic or geometric averaging for Asians.
type AveragingType int

const (
	Arithmetic AveragingType = iota
	Geometric
)

// BinaryType selects the binary payout.
type BinaryType int

const (
	CashOrNothing BinaryType = iota
	AssetOrNothing
)

// LookbackKind selects fixed- or floating-strike lookbacks.
type LookbackKind int

const (
	FixedStrike LookbackKind = iota
	FloatingStrike
)

// OptionType is a tagged variant: Kind selects the family, the other
// fields carry per-family data and are ignored for families that do
// not use them.
type OptionType struct {
	Kind OptionKind

	ExerciseDates []Positive // Bermudan: days until each exercise date
	Barrier       BarrierKind
	BarrierLevel  Positive
	Rebate        Positive
	Averaging     AveragingType
	Binary        BinaryType
	Lookback      LookbackKind
	ResetDates    []Positive // Cliquet
	Assets        int        // Rainbow
	Exponent      decimal.Decimal
	Underlying    *OptionType // Compound
}

// EuropeanType and AmericanType are the common cases.
func EuropeanType() OptionType { return OptionType{Kind: European} }
func AmericanType() OptionType { return OptionType{Kind: American} }

// ExoticParams is the per-contract bag of numeric knobs read by the
// exotic pricers (second asset spot/vol, correlation, caps, floors).
type ExoticParams map[string]decimal.Decimal

func (e ExoticParams) Get(key string, fallback decimal.Decimal) decimal.Decimal {
	if e == nil {
		return fallback
	}
	if v, ok := e[key]; ok {
		return v
	}
	return fallback
}
