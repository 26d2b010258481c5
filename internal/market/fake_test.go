package market

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/rovshanmuradov/hyperbet/internal/blockchain"
)

var (
	testAddrs = blockchain.ParseAddresses(
		"0x99Ce4AA0dF3A96eCec203cf4F36BAc0A54122eAf",
		"0x2260FAC5E5542a773Aa44fBCfeDf7C193bc2C599",
		"0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48",
	)
	testAccount = common.HexToAddress("0x71562b71999873DB5b286dF957af199Ec94617F7")
	errRPC      = errors.New("rpc unavailable")
)

// fakeChain is an in-memory blockchain.Client.
type fakeChain struct {
	mu sync.Mutex

	connected  bool
	decimals   map[common.Address]uint8
	balances   map[common.Address]*big.Int
	allowances map[common.Address]*big.Int
	usdcTotal  *big.Int
	btcTotal   *big.Int
	end        time.Time
	failReads  map[string]bool
	simulateOK bool

	decimalsCalls int
	approvals     []common.Address
	deposits      []blockchain.DepositMethod
	sendErr       error
	waitErr       error
	waitBlock     chan struct{}
}

func newFakeChain() *fakeChain {
	return &fakeChain{
		connected:  true,
		decimals:   map[common.Address]uint8{testAddrs.USDC: 6, testAddrs.WBTC: 8},
		balances:   map[common.Address]*big.Int{testAddrs.USDC: big.NewInt(10_000_000), testAddrs.WBTC: big.NewInt(100_000_000)},
		allowances: map[common.Address]*big.Int{testAddrs.USDC: big.NewInt(0), testAddrs.WBTC: big.NewInt(0)},
		usdcTotal:  big.NewInt(1_000_000_000),
		btcTotal:   big.NewInt(50_000_000),
		end:        time.Date(2023, 6, 15, 0, 0, 0, 0, time.UTC),
		failReads:  map[string]bool{},
	}
}

func (f *fakeChain) fail(method string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failReads[method] {
		return errRPC
	}
	return nil
}

func (f *fakeChain) Decimals(_ context.Context, token common.Address) (uint8, error) {
	if err := f.fail("decimals"); err != nil {
		return 0, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.decimalsCalls++
	return f.decimals[token], nil
}

func (f *fakeChain) BalanceOf(_ context.Context, token, _ common.Address) (*big.Int, error) {
	if err := f.fail("balanceOf"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.balances[token], nil
}

func (f *fakeChain) Allowance(_ context.Context, token, _, _ common.Address) (*big.Int, error) {
	if err := f.fail("allowance"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.allowances[token], nil
}

func (f *fakeChain) USDCTotalDeposits(context.Context) (*big.Int, error) {
	if err := f.fail("usdcTotalDeposits"); err != nil {
		return nil, err
	}
	return f.usdcTotal, nil
}

func (f *fakeChain) BTCTotalDeposits(context.Context) (*big.Int, error) {
	if err := f.fail("btcTotalDeposits"); err != nil {
		return nil, err
	}
	return f.btcTotal, nil
}

func (f *fakeChain) EndTimestamp(context.Context) (time.Time, error) {
	if err := f.fail("endTimestamp"); err != nil {
		return time.Time{}, err
	}
	return f.end, nil
}

func (f *fakeChain) Account() (common.Address, bool) {
	return testAccount, f.connected
}

func (f *fakeChain) SimulateDeposit(context.Context, blockchain.DepositMethod, *big.Int) error {
	if f.simulateOK {
		return nil
	}
	return errors.New("execution reverted")
}

func (f *fakeChain) Approve(_ context.Context, token, _ common.Address, amount *big.Int) (common.Hash, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return common.Hash{}, f.sendErr
	}
	f.approvals = append(f.approvals, token)
	f.allowances[token] = amount
	return common.BigToHash(big.NewInt(int64(len(f.approvals)))), nil
}

func (f *fakeChain) Deposit(_ context.Context, method blockchain.DepositMethod, _ *big.Int) (common.Hash, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return common.Hash{}, f.sendErr
	}
	f.deposits = append(f.deposits, method)
	return common.BigToHash(big.NewInt(int64(100 + len(f.deposits)))), nil
}

func (f *fakeChain) WaitMined(ctx context.Context, _ common.Hash) (*types.Receipt, error) {
	if f.waitBlock != nil {
		select {
		case <-f.waitBlock:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.waitErr != nil {
		return nil, f.waitErr
	}
	return &types.Receipt{Status: types.ReceiptStatusSuccessful, BlockNumber: big.NewInt(17_000_000)}, nil
}

func (f *fakeChain) Close() {}

var _ blockchain.Client = (*fakeChain)(nil)
