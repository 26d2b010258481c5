// internal/blockchain/rpc/types.go
package rpc

import (
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/hyperbet/internal/utils/metrics"
)

const (
	DefaultTimeout  = 10 * time.Second
	DefaultRetries  = 3
	RetryDelay      = 500 * time.Millisecond
	MaxRetryDelay   = 5 * time.Second
	NodeCooldown    = 15 * time.Second
	endpointPattern = "node-%d"
)

// NodeClient представляет отдельный RPC узел
type NodeClient struct {
	Client *ethclient.Client
	URL    string
	// Name is a credential-free label for logs and metrics.
	Name          string
	inactiveUntil time.Time
	mutex         sync.RWMutex
	metrics       *nodeMetrics
}

// nodeMetrics содержит метрики производительности RPC узла
type nodeMetrics struct {
	successCount uint64
	errorCount   uint64
	latency      time.Duration
	mutex        sync.RWMutex
}

// Pool представляет пул RPC клиентов
type Pool struct {
	Clients   []*NodeClient
	Logger    *zap.Logger
	CurrIndex int
	Mutex     sync.Mutex

	retries   int
	collector *metrics.Collector
}
