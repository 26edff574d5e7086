package bonus

import (
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// Formula computes the bonus paid to one ancestor from the level percentage
// and the staked amount.
type Formula func(percentage, stakedAmount decimal.Decimal) decimal.Decimal

const (
	FormulaLiteral      = "literal"
	FormulaProportional = "proportional"
)

var hundred = decimal.NewFromInt(100)

// Literal is (percentage / staked_amount) / 100, the arithmetic the ledger
// has always paid. It shrinks as the stake grows and is kept selectable
// until the business rule is confirmed.
func Literal(percentage, stakedAmount decimal.Decimal) decimal.Decimal {
	if stakedAmount.IsZero() {
		return decimal.Zero
	}
	return percentage.DivRound(stakedAmount, 18).DivRound(hundred, 18)
}

// Proportional is staked_amount * percentage / 100.
func Proportional(percentage, stakedAmount decimal.Decimal) decimal.Decimal {
	return stakedAmount.Mul(percentage).DivRound(hundred, 18)
}

func FormulaByName(name string) (Formula, error) {
	switch name {
	case FormulaLiteral, "":
		return Literal, nil
	case FormulaProportional:
		return Proportional, nil
	}
	return nil, errors.Errorf("unknown bonus formula %q", name)
}
