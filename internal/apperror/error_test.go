package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestNew_DefaultsFromCode(t *testing.T) {
	tests := []struct {
		code   Code
		status int
	}{
		{CodeUnknownSymbol, http.StatusNotFound},
		{CodeInvalidAmount, http.StatusBadRequest},
		{CodeSameToken, http.StatusBadRequest},
		{CodeWalletNotSelected, http.StatusPreconditionFailed},
		{CodeSigningUnsupported, http.StatusPreconditionFailed},
		{CodeAccountNotFound, http.StatusNotFound},
		{CodePriceUnavailable, http.StatusServiceUnavailable},
		{CodeNodeRequestFailed, http.StatusBadGateway},
		{CodeRateLimitExceeded, http.StatusTooManyRequests},
		{CodeInternalError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			err := New(tt.code)
			if err.StatusCode != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, err.StatusCode)
			}
			if err.Message == "" {
				t.Error("expected default message")
			}
		})
	}
}

func TestKindOf_WalksChain(t *testing.T) {
	inner := New(CodeTransactionFailed, WithKind(KindRejectedByUser))
	outer := New(CodeTransactionFailed, WithCause(inner))
	wrapped := fmt.Errorf("submit: %w", outer)

	if got := KindOf(wrapped); got != KindRejectedByUser {
		t.Errorf("expected rejected kind, got %v", got)
	}
	if got := KindOf(errors.New("user rejected the request")); got != KindUnknown {
		t.Errorf("plain errors must not be classified by text, got %v", got)
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"rejected", New(CodeTransactionFailed, WithKind(KindRejectedByUser)), "Transaction was rejected by user"},
		{"insufficient", New(CodeTransactionFailed, WithKind(KindInsufficientBalance)), "Insufficient balance. Get test APT from the faucet."},
		{"network", New(CodeNodeRequestFailed, WithKind(KindNetworkFailure)), "Network error. Please check your connection and try again."},
		{"adapter", New(CodeTransactionFailed, WithKind(KindAdapterIncompatible)), "Wallet adapter error. Please select a different wallet or refresh the page."},
		{"precondition", New(CodeWalletNotSelected), "No wallet detected. Please select a wallet."},
		{"plain", errors.New("boom"), "Transaction failed. Please try again."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestWrap_KeepsExistingAppError(t *testing.T) {
	orig := New(CodeUnknownSymbol)
	got := Wrap(fmt.Errorf("ctx: %w", orig), CodeInternalError, "lookup")

	if got != orig {
		t.Error("expected the original AppError to be returned")
	}
	if got.Context != "lookup" {
		t.Errorf("expected context to be filled, got %q", got.Context)
	}
	if Wrap(nil, CodeInternalError, "") != nil {
		t.Error("expected nil for nil error")
	}
}

func TestErrorsIs_ComparesCode(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", New(CodePriceUnavailable, WithContext("APT")))
	if !errors.Is(err, New(CodePriceUnavailable)) {
		t.Error("expected errors.Is to match by code")
	}
	if errors.Is(err, New(CodeUnknownSymbol)) {
		t.Error("expected different codes not to match")
	}
}
