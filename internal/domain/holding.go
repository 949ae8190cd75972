package domain

import "time"

type AssetClass string

const (
	ClassStock AssetClass = "stock"
	ClassFund  AssetClass = "fund"
	ClassBond  AssetClass = "bond"
)

var AllClasses = []AssetClass{ClassStock, ClassFund, ClassBond}

func ValidClass(c string) bool {
	switch AssetClass(c) {
	case ClassStock, ClassFund, ClassBond:
		return true
	}
	return false
}

// Holding is one position in the portfolio store. Identifier follows the
// class scheme: ticker symbol for stocks, scheme code for funds, ISIN for
// bonds. For bonds CurrentPrice holds a multiplier applied to FaceValue
// rather than an absolute price.
type Holding struct {
	ID               int64
	Identifier       string
	Class            AssetClass
	DisplayName      string
	Quantity         float64
	AverageCost      float64
	FaceValue        float64
	InvestmentAmount float64
	CurrentPrice     float64
	PreviousPrice    float64
	CurrentValue     float64
	PnL              float64
	PnLPercent       float64
	UpdatedAt        time.Time
}

// UnitValue is the per-unit worth used for valuation: the price itself, or
// face value scaled by the price multiplier for bonds.
func (h Holding) UnitValue() float64 {
	if h.Class == ClassBond {
		return h.FaceValue * h.CurrentPrice
	}
	return h.CurrentPrice
}
