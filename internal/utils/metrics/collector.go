// internal/utils/metrics/collector.go
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "hyperbet"

// Collector владеет собственным реестром, поэтому несколько экземпляров
// (например, в тестах) не конфликтуют при регистрации.
// Все методы безопасны для nil-получателя: компонент без метрик просто
// передаёт nil.
type Collector struct {
	registry *prometheus.Registry

	rpcCalls       *prometheus.CounterVec
	rpcLatency     *prometheus.HistogramVec
	transactions   *prometheus.CounterVec
	txDuration     *prometheus.HistogramVec
	pendingTx      *prometheus.GaugeVec
	refreshResults *prometheus.CounterVec
}

// NewCollector создает новый экземпляр коллектора метрик
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		rpcCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rpc_calls_total",
				Help:      "Total number of RPC calls by method and outcome",
			},
			[]string{"method", "status"},
		),
		rpcLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "rpc_latency_seconds",
				Help:      "RPC request latency in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
			},
			[]string{"method", "endpoint"},
		),
		transactions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "transactions_total",
				Help:      "Total number of approve/deposit transactions",
			},
			[]string{"status", "type", "side"},
		),
		txDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "transaction_duration_seconds",
				Help:      "Time from submission to receipt",
				Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
			},
			[]string{"type", "side"},
		),
		pendingTx: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "pending_transactions",
				Help:      "Transactions submitted and not yet mined",
			},
			[]string{"type"},
		),
		refreshResults: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "refresh_total",
				Help:      "Market snapshot refreshes by outcome",
			},
			[]string{"status"},
		),
	}

	c.registry.MustRegister(
		c.rpcCalls,
		c.rpcLatency,
		c.transactions,
		c.txDuration,
		c.pendingTx,
		c.refreshResults,
	)
	return c
}

// Registry возвращает реестр для HTTP-экспорта.
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

// Reset сбрасывает все метрики (полезно для тестирования)
func (c *Collector) Reset() {
	if c == nil {
		return
	}
	c.rpcCalls.Reset()
	c.rpcLatency.Reset()
	c.transactions.Reset()
	c.txDuration.Reset()
	c.pendingTx.Reset()
	c.refreshResults.Reset()
}

// RecordRPC записывает исход и задержку RPC-запроса
func (c *Collector) RecordRPC(method, endpoint string, duration time.Duration, err error) {
	if c == nil {
		return
	}
	c.rpcCalls.WithLabelValues(method, outcome(err == nil)).Inc()
	c.rpcLatency.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordTransaction записывает метрики транзакции с учетом контекста
func (c *Collector) RecordTransaction(ctx context.Context, txType, side string, duration time.Duration, success bool) {
	if c == nil {
		return
	}
	if ctx.Err() != nil {
		c.transactions.WithLabelValues("cancelled", txType, side).Inc()
		return
	}
	c.transactions.WithLabelValues(outcome(success), txType, side).Inc()
	c.txDuration.WithLabelValues(txType, side).Observe(duration.Seconds())
}

// TxStarted / TxFinished track the pending gauge around one transaction.
func (c *Collector) TxStarted(txType string) {
	if c == nil {
		return
	}
	c.pendingTx.WithLabelValues(txType).Inc()
}

func (c *Collector) TxFinished(txType string) {
	if c == nil {
		return
	}
	c.pendingTx.WithLabelValues(txType).Dec()
}

// RecordRefresh counts a snapshot refresh; partial means some reads failed.
func (c *Collector) RecordRefresh(partial bool) {
	if c == nil {
		return
	}
	status := "complete"
	if partial {
		status = "partial"
	}
	c.refreshResults.WithLabelValues(status).Inc()
}

func outcome(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}
