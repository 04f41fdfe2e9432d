package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"syscall"
	"time"
)

// Options настройки ретраев для одного внешнего вызова
type Options struct {
	Name        string
	MaxAttempts int
	BaseDelay   time.Duration
	Retryable   func(error) bool
}

const (
	defaultMaxAttempts = 3
	defaultBaseDelay   = 2 * time.Second
)

// Do выполняет fn с ретраями. Задержка растёт линейно с номером попытки
// (base, 2*base, ...). Неретраибельная ошибка или исчерпание попыток
// возвращают последнюю ошибку.
func Do(ctx context.Context, log *slog.Logger, opts Options, fn func(ctx context.Context) error) error {
	maxAttempts := opts.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	baseDelay := opts.BaseDelay
	if baseDelay <= 0 {
		baseDelay = defaultBaseDelay
	}
	retryable := opts.Retryable
	if retryable == nil {
		retryable = IsTransient
	}
	name := opts.Name
	if name == "" {
		name = "operation"
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}

		if !retryable(lastErr) || attempt == maxAttempts {
			return lastErr
		}

		delay := baseDelay * time.Duration(attempt)
		if log != nil {
			log.Warn("operation failed, will retry",
				"name", name,
				"attempt", attempt,
				"max_attempts", maxAttempts,
				"delay", delay,
				"error", lastErr,
			)
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("%s canceled while waiting for retry: %w", name, ctx.Err())
		case <-time.After(delay):
		}
	}
	return lastErr
}

// HTTPStatusError ошибка внешнего HTTP API с кодом ответа
type HTTPStatusError struct {
	Status int
	Body   string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.Status, e.Body)
}

// IsTransient сетевые сбои и 5xx считаем временными
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		return statusErr.Status >= 500
	}

	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ETIMEDOUT) ||
		errors.Is(err, syscall.EHOSTUNREACH) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	// http.Client заворачивает часть сетевых ошибок в *url.Error без типов
	return strings.Contains(err.Error(), "connection reset") ||
		strings.Contains(err.Error(), "connection refused")
}
