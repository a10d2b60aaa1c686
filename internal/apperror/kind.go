package apperror

import "errors"

// Kind classifies wallet and submission failures for the user.
// Adapters attach it where the failure is detected; nothing parses error text.
type Kind int

const (
	KindUnknown Kind = iota
	KindRejectedByUser
	KindInsufficientBalance
	KindNetworkFailure
	KindAdapterIncompatible
)

func (k Kind) String() string {
	switch k {
	case KindRejectedByUser:
		return "rejected_by_user"
	case KindInsufficientBalance:
		return "insufficient_balance"
	case KindNetworkFailure:
		return "network_failure"
	case KindAdapterIncompatible:
		return "adapter_incompatible"
	default:
		return "unknown"
	}
}

var kindMessages = map[Kind]string{
	KindRejectedByUser:      "Transaction was rejected by user",
	KindInsufficientBalance: "Insufficient balance. Get test APT from the faucet.",
	KindNetworkFailure:      "Network error. Please check your connection and try again.",
	KindAdapterIncompatible: "Wallet adapter error. Please select a different wallet or refresh the page.",
}

// WithKind tags the error with a Kind.
func WithKind(kind Kind) Option {
	return func(e *AppError) {
		e.Kind = kind
	}
}

// KindOf returns the first Kind found in the error chain.
func KindOf(err error) Kind {
	for err != nil {
		var appErr *AppError
		if !errors.As(err, &appErr) {
			return KindUnknown
		}
		if appErr.Kind != KindUnknown {
			return appErr.Kind
		}
		err = appErr.cause
	}
	return KindUnknown
}

// UserMessage returns the text shown to the user for err.
// Kinds win over codes; codes without a registered message fall back to a generic text.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if msg, ok := kindMessages[KindOf(err)]; ok {
		return msg
	}
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Message != "" && appErr.Message != string(appErr.Code) {
		return appErr.Message
	}
	return messages[CodeTransactionFailed]
}
