package telegram

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/mymmrac/telego"
)

func TestParseRetryAfter(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
		ok   bool
	}{
		{name: "nil", err: nil, want: 0, ok: false},
		{name: "plain int", err: errors.New("3"), want: 3, ok: true},
		{name: "api error", err: &APIError{RetryAfter: 9, Message: "rate"}, want: 9, ok: true},
		{name: "text pattern", err: errors.New("Too Many Requests: retry after 4"), want: 4, ok: true},
		{name: "invalid", err: errors.New("other error"), want: 0, ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseRetryAfter(tt.err)
			if got != tt.want || ok != tt.ok {
				t.Fatalf("parseRetryAfter() = (%d,%v), want (%d,%v)", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestWithRetryNilRateLimiter(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), nil, 0, func() error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("WithRetry returned err: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
}

func TestWithRetryContextCancelOnRetry(t *testing.T) {
	rl := NewRateLimiter(1000, 1)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	err := WithRetry(ctx, rl, 1, func() error {
		return fmt.Errorf("retry after 10")
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestWithRetryDefinitiveErrorNotRetried(t *testing.T) {
	rl := NewRateLimiter(1000, 5)
	calls := 0
	wantErr := errors.New("Bad Request: message text is empty")

	err := WithRetry(context.Background(), rl, 1, func() error {
		calls++
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected original error, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
}

func TestExtractChatID(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want int64
	}{
		{name: "int64", in: int64(42), want: 42},
		{name: "int", in: 7, want: 7},
		{name: "chat id struct", in: telego.ChatID{ID: -100123}, want: -100123},
		{name: "chat id pointer", in: &telego.ChatID{ID: 9}, want: 9},
		{name: "nil pointer", in: (*telego.ChatID)(nil), want: 0},
		{name: "username only", in: telego.ChatID{Username: "@somechannel"}, want: 0},
		{name: "numeric string", in: "314", want: 314},
		{name: "unparseable", in: struct{}{}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractChatID(tt.in); got != tt.want {
				t.Fatalf("extractChatID(%v) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestIsMessageNotModified(t *testing.T) {
	if !IsMessageNotModified(errors.New("Bad Request: message is not modified")) {
		t.Fatal("expected not-modified error to be recognized")
	}
	if IsMessageNotModified(errors.New("Bad Request: chat not found")) {
		t.Fatal("unexpected match for unrelated error")
	}
	if IsMessageNotModified(nil) {
		t.Fatal("nil error must not match")
	}
}
