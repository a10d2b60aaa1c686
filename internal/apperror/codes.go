package apperror

// Code represents a unique error code for the application
type Code string

// General error codes
const (
	// General validation
	CodeRequiredField   Code = "REQUIRED_FIELD"
	CodeInvalidInput    Code = "INVALID_INPUT"
	CodeInvalidFormat   Code = "INVALID_FORMAT"
	CodeInvalidState    Code = "INVALID_STATE"
	CodeNotFound        Code = "NOT_FOUND"
	CodeValidationError Code = "VALIDATION_ERROR"

	// Configuration
	CodeConfigurationError Code = "CONFIGURATION_ERROR"

	// External service errors
	CodeExternalServiceError Code = "EXTERNAL_SERVICE_ERROR"
	CodeServiceTimeout       Code = "SERVICE_TIMEOUT"
	CodeServiceUnavailable   Code = "SERVICE_UNAVAILABLE"
	CodeRateLimitExceeded    Code = "RATE_LIMIT_EXCEEDED"

	// System errors
	CodeInternalError Code = "INTERNAL_ERROR"
	CodeUnknownError  Code = "UNKNOWN_ERROR"
)

// DEX-specific error codes
const (
	// Price oracle
	CodeUnknownSymbol    Code = "UNKNOWN_SYMBOL"
	CodePriceUnavailable Code = "PRICE_UNAVAILABLE"
	CodePriceFeedError   Code = "PRICE_FEED_ERROR"

	// Quote
	CodeInvalidAmount         Code = "INVALID_AMOUNT"
	CodeInvalidSlippage       Code = "INVALID_SLIPPAGE"
	CodeSameToken             Code = "SAME_TOKEN"
	CodeTokenNotFound         Code = "TOKEN_NOT_FOUND"
	CodeInsufficientLiquidity Code = "INSUFFICIENT_LIQUIDITY"
	CodeInsufficientBalance   Code = "INSUFFICIENT_BALANCE"

	// Wallet preconditions
	CodeWalletNotSelected   Code = "WALLET_NOT_SELECTED"
	CodeWalletConnectFailed Code = "WALLET_CONNECT_FAILED"
	CodeAccountNotFound     Code = "ACCOUNT_NOT_FOUND"
	CodeSigningUnsupported  Code = "SIGNING_UNSUPPORTED"
	CodeInvalidPrivateKey   Code = "INVALID_PRIVATE_KEY"

	// Transactions
	CodeTransactionFailed  Code = "TRANSACTION_FAILED"
	CodeTxConfirmTimeout   Code = "TX_CONFIRM_TIMEOUT"
	CodeTransactionPending Code = "TRANSACTION_PENDING"

	// Node / network
	CodeNodeRequestFailed Code = "NODE_REQUEST_FAILED"
	CodeResourceNotFound  Code = "RESOURCE_NOT_FOUND"
	CodeNetworkMismatch   Code = "NETWORK_MISMATCH"
	CodeFaucetError       Code = "FAUCET_ERROR"

	// WebSocket errors
	CodeWebSocketConnectionError Code = "WEBSOCKET_CONNECTION_ERROR"
	CodeWebSocketReconnecting    Code = "WEBSOCKET_RECONNECTING"
	CodeWebSocketClosed          Code = "WEBSOCKET_CLOSED"
	CodeWebSocketSendError       Code = "WEBSOCKET_SEND_ERROR"

	// Events
	CodeEventPublishFailed Code = "EVENT_PUBLISH_FAILED"

	// Circuit breaker errors
	CodeCircuitOpen Code = "CIRCUIT_OPEN"
)
