// internal/bet/side.go
package bet

import (
	"fmt"
	"strings"
)

// Side is the outcome a user wagers on.
type Side int

const (
	SideNone Side = iota
	// SideBTC bets that Bitcoin reaches the price target. The user deposits
	// USDC and receives WBTC if the bet settles in their favour.
	SideBTC
	// SideUSDC bets against the target. The user deposits WBTC.
	SideUSDC
)

// Token identifies one of the two ERC-20 tokens held by the escrow.
type Token string

const (
	TokenWBTC Token = "WBTC"
	TokenUSDC Token = "USDC"
)

// String returns the string representation of the side
func (s Side) String() string {
	switch s {
	case SideBTC:
		return "btc"
	case SideUSDC:
		return "usdc"
	default:
		return "none"
	}
}

// Valid reports whether a side has been chosen.
func (s Side) Valid() bool {
	return s == SideBTC || s == SideUSDC
}

// InputToken is the token deposited when betting on s. It is the
// counterpart of the token the side is named after.
func (s Side) InputToken() Token {
	switch s {
	case SideBTC:
		return TokenUSDC
	case SideUSDC:
		return TokenWBTC
	default:
		return ""
	}
}

// PayoutToken is the token received from the losing pool.
func (s Side) PayoutToken() Token {
	switch s {
	case SideBTC:
		return TokenWBTC
	case SideUSDC:
		return TokenUSDC
	default:
		return ""
	}
}

// ParseSide accepts the names used on the command line and in config.
func ParseSide(raw string) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "btc", "bitcoin", "wbtc":
		return SideBTC, nil
	case "usdc", "usd":
		return SideUSDC, nil
	case "", "none":
		return SideNone, nil
	default:
		return SideNone, fmt.Errorf("unknown side %q (want btc or usdc)", raw)
	}
}
