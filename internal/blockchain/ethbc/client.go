// internal/blockchain/ethbc/client.go
package ethbc

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/hyperbet/internal/blockchain"
	"github.com/rovshanmuradov/hyperbet/internal/blockchain/rpc"
	"github.com/rovshanmuradov/hyperbet/internal/utils/metrics"
	"github.com/rovshanmuradov/hyperbet/internal/wallet"
)

// DefaultReceiptPoll is how often WaitMined asks for a receipt.
const DefaultReceiptPoll = 3 * time.Second

// Options describes everything the client needs; nothing is read from globals.
type Options struct {
	RPCList   []string
	ChainID   int64
	Addresses blockchain.Addresses
	// Wallet is nil for a read-only client.
	Wallet  *wallet.Wallet
	Retries int
	Metrics *metrics.Collector
}

// Client реализует blockchain.Client поверх пула go-ethereum узлов.
type Client struct {
	pool        *rpc.Pool
	addrs       blockchain.Addresses
	wallet      *wallet.Wallet
	chainID     *big.Int
	logger      *zap.Logger
	receiptPoll time.Duration
}

var _ blockchain.Client = (*Client)(nil)

// Dial создает клиента и подключается к узлам из opts.RPCList.
// Вызывающий обязан вызвать Close.
func Dial(ctx context.Context, opts Options, logger *zap.Logger) (*Client, error) {
	logger = logger.Named("chain")
	pool, err := rpc.Dial(ctx, opts.RPCList, opts.Retries, opts.Metrics, logger)
	if err != nil {
		if errors.Is(err, rpc.ErrNoActiveClients) {
			return nil, blockchain.ErrNoRPC
		}
		return nil, fmt.Errorf("failed to dial RPC: %w", err)
	}
	return NewClient(pool, opts, logger), nil
}

// NewClient оборачивает готовый пул.
func NewClient(pool *rpc.Pool, opts Options, logger *zap.Logger) *Client {
	return &Client{
		pool:        pool,
		addrs:       opts.Addresses,
		wallet:      opts.Wallet,
		chainID:     big.NewInt(opts.ChainID),
		logger:      logger,
		receiptPoll: DefaultReceiptPoll,
	}
}

// Addresses возвращает адреса контракта и токенов.
func (c *Client) Addresses() blockchain.Addresses {
	return c.addrs
}

// Account возвращает адрес кошелька, если он настроен.
func (c *Client) Account() (common.Address, bool) {
	if c.wallet == nil {
		return common.Address{}, false
	}
	return c.wallet.Address(), true
}

// Ping checks that some node answers and serves the configured chain.
func (c *Client) Ping(ctx context.Context) error {
	return c.pool.ExecuteWithRetry(ctx, "chainId", func(n *rpc.NodeClient) error {
		id, err := n.Client.ChainID(ctx)
		if err != nil {
			return err
		}
		if id.Cmp(c.chainID) != 0 {
			return fmt.Errorf("node serves chain %s, expected %s", id, c.chainID)
		}
		return nil
	})
}

// Close закрывает все RPC соединения.
func (c *Client) Close() {
	c.pool.Close()
}
