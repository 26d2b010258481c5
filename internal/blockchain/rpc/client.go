// internal/blockchain/rpc/client.go
package rpc

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"
)

// NewClient подключается к узлу и создает экземпляр NodeClient.
// Для HTTP-эндпоинтов соединение устанавливается лениво при первом запросе.
func NewClient(ctx context.Context, url string, index int) (*NodeClient, error) {
	dialCtx, cancel := context.WithTimeout(ctx, DefaultTimeout)
	defer cancel()

	client, err := ethclient.DialContext(dialCtx, url)
	if err != nil {
		return nil, NewError(fmt.Errorf("%w: %v", ErrConnectionFailed, err), fmt.Sprintf(endpointPattern, index), "dial")
	}
	return newNodeClient(client, url, index), nil
}

func newNodeClient(client *ethclient.Client, url string, index int) *NodeClient {
	return &NodeClient{
		Client:  client,
		URL:     url,
		Name:    fmt.Sprintf(endpointPattern, index),
		metrics: &nodeMetrics{},
	}
}

// GetMetrics возвращает текущие метрики узла
func (c *NodeClient) GetMetrics() (uint64, uint64, time.Duration) {
	c.metrics.mutex.RLock()
	defer c.metrics.mutex.RUnlock()

	return atomic.LoadUint64(&c.metrics.successCount),
		atomic.LoadUint64(&c.metrics.errorCount),
		c.metrics.latency
}

// Deactivate выводит узел из ротации на время cooldown.
func (c *NodeClient) Deactivate(cooldown time.Duration) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.inactiveUntil = time.Now().Add(cooldown)
}

// IsActive возвращает текущий статус активности узла
func (c *NodeClient) IsActive() bool {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return !time.Now().Before(c.inactiveUntil)
}

func (c *NodeClient) reactivatesAt() time.Time {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.inactiveUntil
}

// UpdateMetrics обновляет метрики узла
func (c *NodeClient) UpdateMetrics(success bool, latency time.Duration) {
	c.metrics.mutex.Lock()
	defer c.metrics.mutex.Unlock()

	if success {
		atomic.AddUint64(&c.metrics.successCount, 1)
	} else {
		atomic.AddUint64(&c.metrics.errorCount, 1)
	}

	if c.metrics.latency == 0 {
		c.metrics.latency = latency
		return
	}
	c.metrics.latency = (c.metrics.latency + latency) / 2
}

// Close закрывает соединение с узлом.
func (c *NodeClient) Close() {
	if c.Client != nil {
		c.Client.Close()
	}
}
