package screen

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rovshanmuradov/hyperbet/internal/bet"
)

// The bet settles at 1 BTC = 1,000,000 USDC.
const targetPriceExp = 6

const bitcoinWarning = "If you believe in Bitcoin and want to save your money or make profit, just buy Bitcoin. " +
	"This bet is not for profit and it is just for a social impact."

// describePayout explains what a deposit of raw returns on each outcome.
// The payout is computed with exact decimal arithmetic; unparseable input
// falls back to the symbolic form.
func describePayout(side bet.Side, raw string) (payout, note string) {
	raw = strings.TrimSpace(raw)
	amount, err := decimal.NewFromString(raw)
	parsed := raw != "" && err == nil

	x := raw
	if x == "" {
		x = "X"
	}

	if side == bet.SideBTC {
		btc := "X / 1000000"
		if parsed {
			btc = amount.Shift(-targetPriceExp).String()
		}
		payout = fmt.Sprintf("If you deposit %s USDC, you will get %s BTC and %s USDC if the BTC price reaches 1m USDC in 90 days, and you will get nothing otherwise", x, btc, x)
		note = "Note: if there isn't enough amount of WBTC to fill your bet after the bet is settled in the contract, you can withdraw your extra USDC amount."
		return payout, note
	}

	usdc := "X * 1000000"
	if parsed {
		usdc = amount.Shift(targetPriceExp).String()
	}
	payout = fmt.Sprintf("If you deposit %s WBTC, you will get %s USDC and %s WBTC if the BTC price does not reach 1m USDC in 90 days, and you will get nothing otherwise", x, usdc, x)
	note = "Note: if there isn't enough amount of USDC to fill your bet after the bet is settled in the contract, you can withdraw your extra WBTC amount."
	return payout, note
}
