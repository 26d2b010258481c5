// internal/blockchain/blockchain.go
package blockchain

import (
	"context"
	"errors"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

var (
	// ErrNoWallet is returned by write operations when no signing key is configured.
	ErrNoWallet = errors.New("no wallet configured")
	// ErrNoRPC is returned when the RPC list yields no usable node.
	ErrNoRPC = errors.New("no RPC endpoint available")
	// ErrTxFailed is returned when a mined transaction has a failed status.
	ErrTxFailed = errors.New("transaction reverted")
)

// Reader описывает операции чтения ERC-20 токенов и контракта ставок.
type Reader interface {
	Decimals(ctx context.Context, token common.Address) (uint8, error)
	BalanceOf(ctx context.Context, token, owner common.Address) (*big.Int, error)
	Allowance(ctx context.Context, token, owner, spender common.Address) (*big.Int, error)
	USDCTotalDeposits(ctx context.Context) (*big.Int, error)
	BTCTotalDeposits(ctx context.Context) (*big.Int, error)
	EndTimestamp(ctx context.Context) (time.Time, error)
}

// Writer описывает подписываемые операции. Все методы возвращают
// ErrNoWallet, если кошелёк не настроен.
type Writer interface {
	Approve(ctx context.Context, token, spender common.Address, amount *big.Int) (common.Hash, error)
	Deposit(ctx context.Context, method DepositMethod, amount *big.Int) (common.Hash, error)
	// SimulateDeposit dry-runs the deposit from the wallet address; a nil
	// error means the deposit would currently succeed.
	SimulateDeposit(ctx context.Context, method DepositMethod, amount *big.Int) error
	WaitMined(ctx context.Context, hash common.Hash) (*types.Receipt, error)
}

// Client объединяет чтение и запись.
type Client interface {
	Reader
	Writer
	Account() (common.Address, bool)
	Close()
}
