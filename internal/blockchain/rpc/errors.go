// internal/blockchain/rpc/errors.go
package rpc

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoActiveClients возникает, когда пул пуст
	ErrNoActiveClients = errors.New("no active RPC clients available")

	// ErrConnectionFailed возникает при ошибке подключения
	ErrConnectionFailed = errors.New("connection failed")
)

// Error представляет ошибку RPC с дополнительным контекстом
type Error struct {
	Err     error
	NodeURL string
	Method  string
}

// Error реализует интерфейс error
func (e *Error) Error() string {
	return fmt.Sprintf("RPC error [%s] at %s: %v", e.Method, e.NodeURL, e.Err)
}

// Unwrap возвращает оригинальную ошибку
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError создает новую ошибку RPC. nodeURL должен быть именем узла,
// а не полным URL, чтобы ключи провайдера не попадали в логи.
func NewError(err error, nodeURL, method string) error {
	return &Error{
		Err:     err,
		NodeURL: nodeURL,
		Method:  method,
	}
}

// IsRetryable reports whether another node could plausibly succeed.
// Reverts are deterministic and context errors are final.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, s := range []string{"execution reverted", "insufficient funds", "nonce too low", "already known"} {
		if strings.Contains(msg, s) {
			return false
		}
	}
	return true
}
