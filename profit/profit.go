// Package profit turns a buy/sell quote pair into a fee and priority cost
// adjusted net estimate, denominated in USDC.
package profit

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	bpsDivisor     = decimal.NewFromInt(10000)
	lamportsPerSol = decimal.NewFromInt(1000000000)
)

// Model holds the configured estimate constants. The fee bps and the SOL
// price are deliberately static inputs, not derived from the live quote.
type Model struct {
	usdcScale   int32
	feeBpsBuy   decimal.Decimal
	feeBpsSell  decimal.Decimal
	priorityUsd decimal.Decimal
}

func NewModel(usdcDecimals int, feeBpsBuy, feeBpsSell int64, priorityLamports, tipLamports uint64, solPriceUsd float64) (*Model, error) {
	if usdcDecimals <= 0 {
		return nil, fmt.Errorf("usdc decimals must be positive, got %d", usdcDecimals)
	}
	budget := decimal.NewFromInt(int64(priorityLamports) + int64(tipLamports))
	return &Model{
		usdcScale:   int32(usdcDecimals),
		feeBpsBuy:   decimal.NewFromInt(feeBpsBuy),
		feeBpsSell:  decimal.NewFromInt(feeBpsSell),
		priorityUsd: budget.Div(lamportsPerSol).Mul(decimal.NewFromFloat(solPriceUsd)),
	}, nil
}

// Evaluation is one net profit estimate. All values are USDC human units.
type Evaluation struct {
	Back         decimal.Decimal
	Gross        decimal.Decimal
	Fees         decimal.Decimal
	PriorityCost decimal.Decimal
	Net          decimal.Decimal
}

// Evaluate computes net = (back - buy) - fees - priority cost. sellOutRaw is
// the sell leg's raw integer output; a value that does not parse as a
// non-negative integer is a hard failure, never a silently wrong number.
func (m *Model) Evaluate(buyUsdc decimal.Decimal, sellOutRaw string) (*Evaluation, error) {
	out, err := decimal.NewFromString(sellOutRaw)
	if err != nil {
		return nil, fmt.Errorf("sell output %q: %w", sellOutRaw, err)
	}
	if out.IsNegative() {
		return nil, fmt.Errorf("sell output %q is negative", sellOutRaw)
	}
	back := out.Shift(-m.usdcScale)
	gross := back.Sub(buyUsdc)
	fees := buyUsdc.Mul(m.feeBpsBuy).Div(bpsDivisor).
		Add(back.Mul(m.feeBpsSell).Div(bpsDivisor))
	net := gross.Sub(fees).Sub(m.priorityUsd)
	return &Evaluation{
		Back:         back,
		Gross:        gross,
		Fees:         fees,
		PriorityCost: m.priorityUsd,
		Net:          net,
	}, nil
}
