// internal/blockchain/ethbc/writes.go
package ethbc

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/hyperbet/internal/blockchain"
	"github.com/rovshanmuradov/hyperbet/internal/blockchain/rpc"
)

// Approve разрешает spender тратить amount токена token.
func (c *Client) Approve(ctx context.Context, token, spender common.Address, amount *big.Int) (common.Hash, error) {
	return c.transact(ctx, erc20ABI, token, "approve", spender, amount)
}

// Deposit вызывает depositBtc или depositUsdc на контракте.
func (c *Client) Deposit(ctx context.Context, method blockchain.DepositMethod, amount *big.Int) (common.Hash, error) {
	if err := validMethod(method); err != nil {
		return common.Hash{}, err
	}
	return c.transact(ctx, escrowABI, c.addrs.Contract, string(method), amount)
}

// SimulateDeposit оценивает газ депозита от имени кошелька. Ошибка означает,
// что депозит сейчас не пройдёт (нет allowance, баланса или окно закрыто).
func (c *Client) SimulateDeposit(ctx context.Context, method blockchain.DepositMethod, amount *big.Int) error {
	if c.wallet == nil {
		return blockchain.ErrNoWallet
	}
	if err := validMethod(method); err != nil {
		return err
	}
	data, err := escrowABI.Pack(string(method), amount)
	if err != nil {
		return fmt.Errorf("failed to pack %s: %w", method, err)
	}

	to := c.addrs.Contract
	msg := ethereum.CallMsg{From: c.wallet.Address(), To: &to, Data: data}
	return c.pool.ExecuteWithRetry(ctx, "estimateGas", func(n *rpc.NodeClient) error {
		_, err := n.Client.EstimateGas(ctx, msg)
		return err
	})
}

// WaitMined опрашивает узлы, пока транзакция не попадёт в блок.
// Для неуспешной транзакции возвращается квитанция вместе с ErrTxFailed.
func (c *Client) WaitMined(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	ticker := time.NewTicker(c.receiptPoll)
	defer ticker.Stop()

	for {
		var receipt *types.Receipt
		err := c.pool.Execute(ctx, "transactionReceipt", func(n *rpc.NodeClient) error {
			r, err := n.Client.TransactionReceipt(ctx, hash)
			if errors.Is(err, ethereum.NotFound) {
				return nil
			}
			receipt = r
			return err
		})
		if err != nil && !rpc.IsRetryable(err) {
			return nil, err
		}
		if err != nil {
			c.logger.Debug("Receipt lookup failed", zap.String("tx", hash.Hex()), zap.Error(err))
		}

		if receipt != nil {
			if receipt.Status != types.ReceiptStatusSuccessful {
				return receipt, fmt.Errorf("%w: %s", blockchain.ErrTxFailed, hash.Hex())
			}
			return receipt, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// transact подписывает и отправляет транзакцию через один узел без повторов:
// повторная отправка могла бы продублировать депозит.
func (c *Client) transact(ctx context.Context, contractABI abi.ABI, to common.Address, method string, args ...interface{}) (common.Hash, error) {
	if c.wallet == nil {
		return common.Hash{}, blockchain.ErrNoWallet
	}
	opts, err := c.wallet.TransactOpts(ctx, c.chainID)
	if err != nil {
		return common.Hash{}, err
	}

	var hash common.Hash
	err = c.pool.Execute(ctx, method, func(n *rpc.NodeClient) error {
		contract := bind.NewBoundContract(to, contractABI, n.Client, n.Client, n.Client)
		tx, err := contract.Transact(opts, method, args...)
		if err != nil {
			return err
		}
		hash = tx.Hash()
		return nil
	})
	if err != nil {
		return common.Hash{}, err
	}

	c.logger.Info("Transaction sent",
		zap.String("method", method),
		zap.String("to", to.Hex()),
		zap.String("tx", hash.Hex()))
	return hash, nil
}

func validMethod(method blockchain.DepositMethod) error {
	switch method {
	case blockchain.DepositBTC, blockchain.DepositUSDC:
		return nil
	default:
		return fmt.Errorf("unknown deposit method %q", method)
	}
}
