// Package market gathers on-chain state for the bet screen and tracks the
// approve and deposit transactions sent from it.
package market

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/rovshanmuradov/hyperbet/internal/bet"
	"github.com/rovshanmuradov/hyperbet/internal/blockchain"
)

// Chain is the read side the poller needs.
type Chain interface {
	blockchain.Reader
	Account() (common.Address, bool)
	SimulateDeposit(ctx context.Context, method blockchain.DepositMethod, amount *big.Int) error
}

// TokenAddress maps a token to its configured contract address.
func TokenAddress(addrs blockchain.Addresses, token bet.Token) common.Address {
	if token == bet.TokenWBTC {
		return addrs.WBTC
	}
	return addrs.USDC
}

// DepositMethod returns the escrow function for a side. The Bitcoin side
// deposits USDC and the USDC side deposits WBTC.
func DepositMethod(side bet.Side) blockchain.DepositMethod {
	if side == bet.SideBTC {
		return blockchain.DepositUSDC
	}
	return blockchain.DepositBTC
}
