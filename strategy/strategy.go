// Package strategy implements multi-leg option strategies with
// analytical P&L, break-evens, optimization over a chain and
// delta-neutrality analysis.
package strategy

import (
	"github.com/shopspring/decimal"

	"github.com/stratlab/optstrat/chain"
	"github.com/stratlab/optstrat/model"
)

// DeltaThreshold is the absolute net delta under which a strategy
// counts as delta neutral.
const DeltaThreshold = 1e-4

// BasicAble exposes identity and legs.
type BasicAble interface {
	GetTitle() string
	GetSymbol() string
	GetUnderlyingPrice() model.Positive
	GetPositions() []model.Position
}

// Positionable allows leg replacement by contract identity.
type Positionable interface {
	AddPosition(p model.Position) error
	ModifyPosition(p model.Position) error
}

type BreakEvenable interface {
	GetBreakEvenPoints() []model.Positive
}

// Profit evaluates the strategy at an expiration price.
type Profit interface {
	CalculateProfitAt(price model.Positive) (decimal.Decimal, error)
}

// Strategies is the aggregate metric surface shared by every variant.
type Strategies interface {
	BasicAble
	BreakEvenable
	Profit
	GetNetPremiumReceived() model.Positive
	GetMaxProfit() (model.Positive, error)
	GetMaxLoss() (model.Positive, error)
	GetTotalCost() model.Positive
	GetFees() model.Positive
	GetProfitArea() (decimal.Decimal, error)
	GetProfitRatio() (decimal.Decimal, error)
	GetRangeOfProfit() (model.Positive, error)
	GetBestRangeToShow(step model.Positive) []model.Positive
}

// GreekAble aggregates per-leg greeks with side signs.
type GreekAble interface {
	Greeks() (model.Greek, error)
	NetDelta() (decimal.Decimal, error)
}

// DeltaNeutral is the delta analysis and adjustment surface.
type DeltaNeutral interface {
	DeltaNeutrality() (*DeltaNeutralityInfo, error)
	IsDeltaNeutral() (bool, error)
	DeltaAdjustments() ([]DeltaAdjustment, error)
	ApplyDeltaAdjustments(action *model.Action) error
}

// Optimizable scans a chain for the best strike configuration and
// mutates the receiver to it.
type Optimizable interface {
	GetBestArea(ch *chain.OptionChain, side FindOptimalSide) error
	GetBestRatio(ch *chain.OptionChain, side FindOptimalSide) error
}

// PnLCalculator marks strategies that can be stepped against a walk.
type PnLCalculator interface {
	PnLAtPrice(price model.Positive) (*model.PnL, error)
}

// Strategy is the full capability set every variant satisfies.
type Strategy interface {
	Strategies
	GreekAble
	DeltaNeutral
	Optimizable
	PnLCalculator
}

// OptimalSideKind restricts the strike search space.
type OptimalSideKind int

const (
	Upper OptimalSideKind = iota
	Lower
	All
	Center
	StrikeRange
	DeltaRange
)

// FindOptimalSide is the strike filter for optimization. Range kinds
// carry their bounds.
type FindOptimalSide struct {
	Kind    OptimalSideKind
	Lo, Hi  model.Positive
	DeltaLo decimal.Decimal
	DeltaHi decimal.Decimal
}

func UpperSide() FindOptimalSide  { return FindOptimalSide{Kind: Upper} }
func LowerSide() FindOptimalSide  { return FindOptimalSide{Kind: Lower} }
func AllSides() FindOptimalSide   { return FindOptimalSide{Kind: All} }
func CenterSide() FindOptimalSide { return FindOptimalSide{Kind: Center} }

func RangeSide(lo, hi model.Positive) FindOptimalSide {
	return FindOptimalSide{Kind: StrikeRange, Lo: lo, Hi: hi}
}

func DeltaRangeSide(lo, hi decimal.Decimal) FindOptimalSide {
	return FindOptimalSide{Kind: DeltaRange, DeltaLo: lo, DeltaHi: hi}
}

// DeltaPositionInfo describes one leg's delta contribution.
type DeltaPositionInfo struct {
	Strike model.Positive
	Delta  decimal.Decimal
	Style  model.OptionStyle
	Side   model.Side
}

// DeltaNeutralityInfo is the result of a delta_neutrality scan.
type DeltaNeutralityInfo struct {
	NetDelta         decimal.Decimal
	IndividualDeltas []DeltaPositionInfo
}

// DeltaAdjustmentKind tags a suggested adjustment.
type DeltaAdjustmentKind int

const (
	BuyOptions DeltaAdjustmentKind = iota
	SellOptions
	BuyUnderlying
	SellUnderlying
	NoAdjustmentNeeded
)

// DeltaAdjustment is one candidate action to move net delta toward
// zero.
type DeltaAdjustment struct {
	Kind     DeltaAdjustmentKind
	Quantity model.Positive
	Strike   model.Positive
	Style    model.OptionStyle
	Side     model.Side
}
