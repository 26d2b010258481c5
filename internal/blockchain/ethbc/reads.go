// internal/blockchain/ethbc/reads.go
package ethbc

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/rovshanmuradov/hyperbet/internal/blockchain/rpc"
)

// Decimals читает точность токена.
func (c *Client) Decimals(ctx context.Context, token common.Address) (uint8, error) {
	out, err := c.call(ctx, erc20ABI, token, "decimals")
	if err != nil {
		return 0, err
	}
	v, ok := out[0].(uint8)
	if !ok {
		return 0, fmt.Errorf("decimals: unexpected type %T", out[0])
	}
	return v, nil
}

// BalanceOf читает баланс owner в базовых единицах токена.
func (c *Client) BalanceOf(ctx context.Context, token, owner common.Address) (*big.Int, error) {
	return c.callUint(ctx, erc20ABI, token, "balanceOf", owner)
}

// Allowance читает разрешение owner -> spender.
func (c *Client) Allowance(ctx context.Context, token, owner, spender common.Address) (*big.Int, error) {
	return c.callUint(ctx, erc20ABI, token, "allowance", owner, spender)
}

// USDCTotalDeposits returns the USDC pool (the Bitcoin side's stake).
func (c *Client) USDCTotalDeposits(ctx context.Context) (*big.Int, error) {
	return c.callUint(ctx, escrowABI, c.addrs.Contract, "usdcTotalDeposits")
}

// BTCTotalDeposits returns the WBTC pool (the USDC side's stake).
func (c *Client) BTCTotalDeposits(ctx context.Context) (*big.Int, error) {
	return c.callUint(ctx, escrowABI, c.addrs.Contract, "btcTotalDeposits")
}

// EndTimestamp возвращает момент закрытия ставок.
func (c *Client) EndTimestamp(ctx context.Context) (time.Time, error) {
	v, err := c.callUint(ctx, escrowABI, c.addrs.Contract, "endTimestamp")
	if err != nil {
		return time.Time{}, err
	}
	if !v.IsInt64() {
		return time.Time{}, fmt.Errorf("endTimestamp out of range: %s", v)
	}
	return time.Unix(v.Int64(), 0), nil
}

func (c *Client) callUint(ctx context.Context, contractABI abi.ABI, to common.Address, method string, args ...interface{}) (*big.Int, error) {
	out, err := c.call(ctx, contractABI, to, method, args...)
	if err != nil {
		return nil, err
	}
	v, ok := out[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("%s: unexpected type %T", method, out[0])
	}
	return v, nil
}

// call выполняет eth_call с повторными попытками по пулу узлов.
func (c *Client) call(ctx context.Context, contractABI abi.ABI, to common.Address, method string, args ...interface{}) ([]interface{}, error) {
	data, err := contractABI.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to pack %s: %w", method, err)
	}

	var raw []byte
	err = c.pool.ExecuteWithRetry(ctx, method, func(n *rpc.NodeClient) error {
		callCtx, cancel := context.WithTimeout(ctx, rpc.DefaultTimeout)
		defer cancel()

		res, err := n.Client.CallContract(callCtx, ethereum.CallMsg{To: &to, Data: data}, nil)
		if err != nil {
			return err
		}
		raw = res
		return nil
	})
	if err != nil {
		return nil, err
	}

	out, err := contractABI.Unpack(method, raw)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack %s: %w", method, err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%s: empty result", method)
	}
	return out, nil
}
