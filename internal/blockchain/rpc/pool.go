// internal/blockchain/rpc/pool.go
package rpc

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/hyperbet/internal/utils/metrics"
)

// NewPool создает новый пул клиентов
func NewPool(clients []*NodeClient, retries int, collector *metrics.Collector, logger *zap.Logger) *Pool {
	if retries <= 0 {
		retries = DefaultRetries
	}
	return &Pool{
		Clients:   clients,
		Logger:    logger,
		CurrIndex: -1,
		retries:   retries,
		collector: collector,
	}
}

// Dial подключается ко всем URL из списка. Узлы, к которым не удалось
// подключиться, пропускаются; ошибка возвращается, только если не осталось ни одного.
func Dial(ctx context.Context, urls []string, retries int, collector *metrics.Collector, logger *zap.Logger) (*Pool, error) {
	clients := make([]*NodeClient, 0, len(urls))
	for i, url := range urls {
		client, err := NewClient(ctx, url, i)
		if err != nil {
			logger.Warn("Skipping RPC node", zap.Error(err))
			continue
		}
		clients = append(clients, client)
	}
	if len(clients) == 0 {
		return nil, ErrNoActiveClients
	}
	logger.Debug("RPC pool ready", zap.Int("nodes", len(clients)))
	return NewPool(clients, retries, collector, logger), nil
}

// GetNextClient возвращает следующий активный клиент из пула.
// Если все узлы на cooldown, возвращается тот, что освободится раньше всех.
func (p *Pool) GetNextClient() *NodeClient {
	p.Mutex.Lock()
	defer p.Mutex.Unlock()

	if len(p.Clients) == 0 {
		return nil
	}

	var fallback *NodeClient
	for range p.Clients {
		p.CurrIndex = (p.CurrIndex + 1) % len(p.Clients)
		client := p.Clients[p.CurrIndex]
		if client.IsActive() {
			return client
		}
		if fallback == nil || client.reactivatesAt().Before(fallback.reactivatesAt()) {
			fallback = client
		}
	}
	return fallback
}

// ExecuteWithRetry выполняет операцию чтения с повторными попытками,
// переключаясь между узлами после каждой ошибки.
func (p *Pool) ExecuteWithRetry(ctx context.Context, method string, operation func(*NodeClient) error) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = RetryDelay
	policy.MaxInterval = MaxRetryDelay

	notify := func(err error, d time.Duration) {
		p.Logger.Debug("Retrying RPC call",
			zap.String("method", method),
			zap.Duration("backoff", d),
			zap.Error(err))
	}

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		err := p.Execute(ctx, method, operation)
		if err != nil && !IsRetryable(err) {
			return struct{}{}, backoff.Permanent(err)
		}
		return struct{}{}, err
	},
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(uint(p.retries)),
		backoff.WithNotify(notify))
	return err
}

// Execute выполняет операцию ровно один раз на следующем узле.
// Используется для отправки транзакций, которые нельзя повторять вслепую.
func (p *Pool) Execute(ctx context.Context, method string, operation func(*NodeClient) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	client := p.GetNextClient()
	if client == nil {
		return ErrNoActiveClients
	}

	start := time.Now()
	err := operation(client)
	elapsed := time.Since(start)
	client.UpdateMetrics(err == nil, elapsed)
	p.collector.RecordRPC(method, client.Name, elapsed, err)

	if err == nil {
		return nil
	}
	if IsRetryable(err) {
		client.Deactivate(NodeCooldown)
	}
	return NewError(err, client.Name, method)
}

// Close закрывает все узлы пула.
func (p *Pool) Close() {
	for _, client := range p.Clients {
		client.Close()
	}
}
