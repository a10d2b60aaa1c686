package apperror

// messages maps error codes to human-readable messages
var messages = map[Code]string{
	// General validation
	CodeRequiredField:   "Required field is missing",
	CodeInvalidInput:    "Invalid input provided",
	CodeInvalidFormat:   "Invalid data format",
	CodeInvalidState:    "Invalid state for this operation",
	CodeNotFound:        "Resource not found",
	CodeValidationError: "Validation error",

	// Configuration
	CodeConfigurationError: "Configuration error",

	// External service errors
	CodeExternalServiceError: "External service error",
	CodeServiceTimeout:       "Service request timeout",
	CodeServiceUnavailable:   "Service temporarily unavailable",
	CodeRateLimitExceeded:    "Rate limit exceeded",

	// System errors
	CodeInternalError: "Internal server error",
	CodeUnknownError:  "An unknown error occurred",

	// Price oracle
	CodeUnknownSymbol:    "No price feed is known for this token symbol",
	CodePriceUnavailable: "Token price is currently unavailable",
	CodePriceFeedError:   "Price feed request failed",

	// Quote
	CodeInvalidAmount:         "Enter a valid positive amount",
	CodeInvalidSlippage:       "Slippage must be between 0 and 100 percent",
	CodeSameToken:             "Select two different tokens",
	CodeTokenNotFound:         "Token is not supported",
	CodeInsufficientLiquidity: "Pool has no liquidity for this pair",
	CodeInsufficientBalance:   "Insufficient balance",

	// Wallet preconditions
	CodeWalletNotSelected:   "No wallet detected. Please select a wallet.",
	CodeWalletConnectFailed: "Failed to connect wallet. Please try again.",
	CodeAccountNotFound:     "Wallet account not found. Please reconnect your wallet.",
	CodeSigningUnsupported:  "Wallet does not support transactions. Please try a different wallet or refresh the page.",
	CodeInvalidPrivateKey:   "Wallet private key is invalid",

	// Transactions
	CodeTransactionFailed:  "Transaction failed. Please try again.",
	CodeTxConfirmTimeout:   "Transaction submitted but not yet confirmed",
	CodeTransactionPending: "Transaction is still pending",

	// Node / network
	CodeNodeRequestFailed: "Aptos node request failed",
	CodeResourceNotFound:  "Resource not found on chain",
	CodeNetworkMismatch:   "Connected to the wrong network",
	CodeFaucetError:       "Faucet request failed",

	// WebSocket errors
	CodeWebSocketConnectionError: "WebSocket connection error",
	CodeWebSocketReconnecting:    "WebSocket reconnecting",
	CodeWebSocketClosed:          "WebSocket connection closed",
	CodeWebSocketSendError:       "Failed to send WebSocket message",

	// Events
	CodeEventPublishFailed: "Failed to publish event",

	// Circuit breaker errors
	CodeCircuitOpen: "Circuit breaker is open",
}
