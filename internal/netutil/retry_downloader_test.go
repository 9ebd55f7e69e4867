package netutil

import (
	"context"
	"errors"
	"testing"
	"time"
)

type downloaderFunc func(ctx context.Context, url string) ([]byte, error)

func (f downloaderFunc) Download(ctx context.Context, url string) ([]byte, error) {
	return f(ctx, url)
}

func TestRetryDownloader_NoRetryOnHTTPStatusError(t *testing.T) {
	proxyCalls := 0

	r := &RetryDownloader{
		Direct: downloaderFunc(func(_ context.Context, url string) ([]byte, error) {
			return nil, &HTTPStatusError{StatusCode: 404, URL: url}
		}),
		ProxyDownload: func(_ context.Context, _ string) ([]byte, error) {
			proxyCalls++
			return []byte("proxy"), nil
		},
	}

	_, err := r.Download(context.Background(), "https://example.com")
	if err == nil {
		t.Fatal("expected direct error")
	}
	if proxyCalls != 0 {
		t.Fatalf("expected no proxy retry, got proxy=%d", proxyCalls)
	}
}

func TestRetryDownloader_NoRetryOnNonRetryableError(t *testing.T) {
	proxyCalls := 0
	inner := errors.New("bad url")

	r := &RetryDownloader{
		Direct: downloaderFunc(func(_ context.Context, _ string) ([]byte, error) {
			return nil, &NonRetryableError{Err: inner}
		}),
		ProxyDownload: func(_ context.Context, _ string) ([]byte, error) {
			proxyCalls++
			return []byte("proxy"), nil
		},
	}

	_, err := r.Download(context.Background(), "::::")
	if err == nil {
		t.Fatal("expected direct error")
	}
	if !errors.Is(err, inner) {
		t.Fatalf("expected wrapped inner error, got: %v", err)
	}
	if proxyCalls != 0 {
		t.Fatalf("expected no proxy retry, got proxy=%d", proxyCalls)
	}
}

func TestRetryDownloader_RetryOnNetworkError(t *testing.T) {
	proxyCalls := 0

	r := &RetryDownloader{
		Direct: downloaderFunc(func(_ context.Context, _ string) ([]byte, error) {
			return nil, context.DeadlineExceeded
		}),
		ProxyDownload: func(_ context.Context, _ string) ([]byte, error) {
			proxyCalls++
			return []byte("via-proxy"), nil
		},
	}

	body, err := r.Download(context.Background(), "https://example.com")
	if err != nil {
		t.Fatalf("expected proxy retry success, got %v", err)
	}
	if string(body) != "via-proxy" {
		t.Fatalf("unexpected body %q", string(body))
	}
	if proxyCalls != 1 {
		t.Fatalf("expected single successful retry, got proxy=%d", proxyCalls)
	}
}

func TestRetryDownloader_NoRetryWhenContextDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	proxyCalls := 0
	r := &RetryDownloader{
		Direct: downloaderFunc(func(_ context.Context, _ string) ([]byte, error) {
			return nil, context.Canceled
		}),
		ProxyDownload: func(_ context.Context, _ string) ([]byte, error) {
			proxyCalls++
			return nil, nil
		},
	}

	_, err := r.Download(ctx, "https://example.com")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context canceled, got %v", err)
	}
	if proxyCalls != 0 {
		t.Fatalf("expected no retry when context is done, got proxy calls=%d", proxyCalls)
	}
}

func TestRetryDownloader_ProxyRetriesExhaustedReturnsDirectError(t *testing.T) {
	proxyCalls := 0
	directErr := context.DeadlineExceeded

	r := &RetryDownloader{
		Direct: downloaderFunc(func(_ context.Context, _ string) ([]byte, error) {
			return nil, directErr
		}),
		ProxyDownload: func(_ context.Context, _ string) ([]byte, error) {
			proxyCalls++
			return nil, errors.New("proxy failed")
		},
	}

	_, err := r.Download(context.Background(), "https://example.com")
	if !errors.Is(err, directErr) {
		t.Fatalf("expected original direct error, got %v", err)
	}
	if proxyCalls != 2 {
		t.Fatalf("expected 2 proxy fetch attempts, got %d", proxyCalls)
	}
}

func TestRetryDownloader_ProxyAttemptTimeoutApplies(t *testing.T) {
	proxyCalls := 0

	r := &RetryDownloader{
		Direct: downloaderFunc(func(_ context.Context, _ string) ([]byte, error) {
			return nil, context.DeadlineExceeded
		}),
		ProxyAttemptTimeout: 20 * time.Millisecond,
		ProxyDownload: func(ctx context.Context, _ string) ([]byte, error) {
			proxyCalls++
			if _, ok := ctx.Deadline(); !ok {
				return nil, errors.New("missing per-attempt deadline")
			}
			if proxyCalls == 1 {
				<-ctx.Done()
				return nil, ctx.Err()
			}
			return []byte("via-proxy"), nil
		},
	}

	body, err := r.Download(context.Background(), "https://example.com")
	if err != nil {
		t.Fatalf("expected proxy retry success, got %v", err)
	}
	if string(body) != "via-proxy" {
		t.Fatalf("unexpected body %q", string(body))
	}
	if proxyCalls != 2 {
		t.Fatalf("expected two timed attempts, got proxy=%d", proxyCalls)
	}
}
