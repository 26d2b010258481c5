// internal/blockchain/types.go
package blockchain

import (
	"github.com/ethereum/go-ethereum/common"
)

// DepositMethod names the escrow function that takes a deposit.
type DepositMethod string

const (
	// DepositBTC deposits WBTC (a bet that Bitcoin does not reach the target).
	DepositBTC DepositMethod = "depositBtc"
	// DepositUSDC deposits USDC (a bet that Bitcoin reaches the target).
	DepositUSDC DepositMethod = "depositUsdc"
)

// Addresses holds the escrow contract and the two tokens it accepts.
type Addresses struct {
	Contract common.Address
	WBTC     common.Address
	USDC     common.Address
}

// ParseAddresses converts hex strings validated by the config layer.
func ParseAddresses(contract, wbtc, usdc string) Addresses {
	return Addresses{
		Contract: common.HexToAddress(contract),
		WBTC:     common.HexToAddress(wbtc),
		USDC:     common.HexToAddress(usdc),
	}
}
