package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// -----------------------------------------------------------------------------
// One-time Tables
// -----------------------------------------------------------------------------

// Account represents a simulated exchange user. Immutable once loaded.
type Account struct {
	AccountID  string          // Primary key
	Email      string          // Synthetic, unique per account
	SignupDate time.Time       // Signup time
	Country    string          // ISO 3166 alpha-2 jurisdiction
	KYCStatus  string          // verified, pending, rejected
	Tier       string          // basic, intermediate, pro
	BalanceUSD decimal.Decimal // Opening balance
	IsActive   bool            // 90% of accounts
	CreatedAt  time.Time       // Same as SignupDate
}

// Deposit is an inbound funding movement.
type Deposit struct {
	DepositID     string          // Primary key
	AccountID     string          // Foreign key to Account
	Timestamp     time.Time       // Movement time
	DepositType   string          // fiat or crypto
	Currency      string          // Fiat code or crypto id
	Amount        decimal.Decimal // Amount in Currency
	PaymentMethod string          // bank_transfer, wire, ach_transfer, sepa, blockchain
	Status        string          // completed, pending, failed
	Confirmations *int64          // Blockchain confirmations (crypto only)
	CreatedAt     time.Time
}

// Withdrawal is an outbound funding movement.
type Withdrawal struct {
	WithdrawalID    string          // Primary key
	AccountID       string          // Foreign key to Account
	Timestamp       time.Time       // Movement time
	WithdrawalType  string          // fiat or crypto
	Currency        string          // Fiat code or crypto id
	Amount          decimal.Decimal // Amount in Currency
	Fee             decimal.Decimal // 0.5% (crypto) or 10 flat (fiat)
	DestinationType string          // wallet_address, bank_account, card
	TxHash          *string         // On-chain hash (crypto only, may be absent)
	Status          string          // completed, pending, failed, rejected
	CreatedAt       time.Time
}

// Order is a spot order. Status is assigned at generation and never updated.
type Order struct {
	OrderID       string           // Primary key
	AccountID     string           // Foreign key to Account
	Timestamp     time.Time        // Placement time
	TradingPair   string           // base/quote, e.g. "bitcoin/USD"
	Side          string           // buy or sell
	OrderType     string           // limit or market
	BaseCurrency  string           // Crypto id
	QuoteCurrency string           // Fiat code
	BaseAmount    decimal.Decimal  // Requested quantity
	FilledAmount  decimal.Decimal  // Executed quantity
	LimitPrice    *decimal.Decimal // nil for market orders
	Status        string           // See OrderStatus constants
	CreatedAt     time.Time
}

// Execution is a trade derived from a fillable Order.
type Execution struct {
	TradeID       string    // Primary key
	OrderID       string    // Foreign key to Order (fillable status only)
	AccountID     string    // Always equal to the Order's AccountID
	Timestamp     time.Time // Same as the Order
	TradingPair   string
	Side          string
	BaseCurrency  string
	QuoteCurrency string
	BaseAmount    decimal.Decimal // Order FilledAmount
	QuoteAmount   decimal.Decimal // BaseAmount * Price
	Price         decimal.Decimal
	FeeAmount     decimal.Decimal
	FeeCurrency   string
	OrderType     string
	IsMaker       bool
	CreatedAt     time.Time
}

// -----------------------------------------------------------------------------
// Incremental Table
// -----------------------------------------------------------------------------

// RampTransaction is a fiat-to-crypto on-ramp purchase, bucketed by calendar date.
type RampTransaction struct {
	TransactionID string          // Primary key
	AccountID     string          // Foreign key to Account
	Timestamp     time.Time       // Within the batch date
	FiatCurrency  string          // What the user paid with
	FiatAmount    decimal.Decimal // Amount paid
	CryptoToken   string          // What the user bought
	CryptoAmount  decimal.Decimal // 8 decimal places
	PaymentMethod string
	Country       string
	Status        string          // completed, failed, pending
	FeeUSD        decimal.Decimal // 1.5% of the USD value
}

// -----------------------------------------------------------------------------
// Reference Keys
// -----------------------------------------------------------------------------

// OrderRef is the persisted projection of an Order needed to derive an Execution.
type OrderRef struct {
	OrderID       string
	AccountID     string
	Timestamp     time.Time
	TradingPair   string
	Side          string
	OrderType     string
	BaseCurrency  string
	QuoteCurrency string
	FilledAmount  decimal.Decimal
	LimitPrice    *decimal.Decimal
	Status        string
}

// Order statuses.
const (
	OrderStatusOpen            = "open"
	OrderStatusFilled          = "filled"
	OrderStatusPartiallyFilled = "partially_filled"
	OrderStatusCancelled       = "cancelled"
	OrderStatusExpired         = "expired"
)

// FillableStatuses are the only order statuses an Execution may be derived from.
var FillableStatuses = []string{OrderStatusFilled, OrderStatusPartiallyFilled}

// IsFillable reports whether an order with the given status may carry executions.
func IsFillable(status string) bool {
	return status == OrderStatusFilled || status == OrderStatusPartiallyFilled
}
