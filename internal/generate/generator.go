package generate

import (
	"encoding/hex"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rickgao/rampsim/internal/model"
)

// ErrNoKeys is returned when a generator is given no foreign keys to draw from.
var ErrNoKeys = errors.New("no reference keys")

// Fee schedule.
var (
	rampFeeRate      = decimal.RequireFromString("0.015")
	makerFeeRate     = decimal.RequireFromString("0.0025")
	takerFeeRate     = decimal.RequireFromString("0.0040")
	cryptoWithdrawal = decimal.RequireFromString("0.005")
	fiatWithdrawal   = decimal.NewFromInt(10)
)

const signupWindowDays = 730

var (
	countries = []string{
		"US", "GB", "DE", "FR", "CA", "AU", "JP", "SG", "BR", "MX",
		"ES", "IT", "NL", "SE", "CH", "IN", "KR", "ZA", "NG", "AR",
	}
	emailDomains = []string{"example.com", "example.org", "example.net", "mail.test"}
)

// Generator builds entities from a seeded stream.
type Generator struct {
	rng    *rand.Rand
	ids    randReader
	quotes model.Quotes
	now    time.Time
}

// New creates a Generator. now anchors relative timestamps such as signups.
func New(seed uint64, quotes model.Quotes, now time.Time) *Generator {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	return &Generator{
		rng:    rng,
		ids:    randReader{r: rng},
		quotes: quotes,
		now:    now.UTC(),
	}
}

func (g *Generator) newID() string {
	return uuid.Must(uuid.NewRandomFromReader(g.ids)).String()
}

// cents returns a two-decimal amount uniform in [lo, hi].
func (g *Generator) cents(lo, hi float64) decimal.Decimal {
	return decimal.New(between(g.rng, int64(lo*100), int64(hi*100)), -2)
}

// sats returns an eight-decimal amount uniform in [lo, hi].
func (g *Generator) sats(lo, hi float64) decimal.Decimal {
	return decimal.New(between(g.rng, int64(lo*1e8), int64(hi*1e8)), -8)
}

// recent returns a timestamp within the last 90 days.
func (g *Generator) recent() time.Time {
	ago := time.Duration(between(g.rng, 0, 90))*24*time.Hour +
		time.Duration(between(g.rng, 0, 1440))*time.Minute
	return g.now.Add(-ago).Truncate(time.Second)
}

// within returns a timestamp inside the calendar day starting at day.
func (g *Generator) within(day time.Time) time.Time {
	return day.Add(time.Duration(g.rng.Int64N(86400)) * time.Second)
}

// Accounts generates n accounts.
func (g *Generator) Accounts(n int) []model.Account {
	start := g.now.AddDate(0, 0, -signupWindowDays).Truncate(time.Second)
	out := make([]model.Account, n)
	for i := range out {
		id := g.newID()
		signup := start.AddDate(0, 0, int(between(g.rng, 0, signupWindowDays)))

		balance := decimal.Zero
		if chance(g.rng, 0.3) {
			balance = g.cents(100, 10000)
		}

		out[i] = model.Account{
			AccountID:  id,
			Email:      fmt.Sprintf("user.%s@%s", strings.ReplaceAll(id, "-", "")[:12], oneOf(g.rng, emailDomains)),
			SignupDate: signup,
			Country:    oneOf(g.rng, countries),
			KYCStatus: pick(g.rng, []weighted[string]{
				{"verified", 70}, {"pending", 20}, {"rejected", 10},
			}),
			Tier: pick(g.rng, []weighted[string]{
				{"basic", 60}, {"intermediate", 30}, {"pro", 10},
			}),
			BalanceUSD: balance,
			IsActive:   chance(g.rng, 0.9),
			CreatedAt:  signup,
		}
	}
	return out
}

// Deposits generates n deposits against accountIDs.
func (g *Generator) Deposits(n int, accountIDs []string) ([]model.Deposit, error) {
	if len(accountIDs) == 0 {
		return nil, fmt.Errorf("deposits: %w", ErrNoKeys)
	}
	out := make([]model.Deposit, n)
	for i := range out {
		d := model.Deposit{
			DepositID: g.newID(),
			AccountID: oneOf(g.rng, accountIDs),
			Timestamp: g.recent(),
		}
		if chance(g.rng, 0.7) {
			d.DepositType = "fiat"
			d.Currency = oneOf(g.rng, model.SupportedFiat)
			d.Amount = g.cents(50, 10000)
			d.PaymentMethod = oneOf(g.rng, []string{"bank_transfer", "wire", "ach_transfer", "sepa"})
		} else {
			confirmations := between(g.rng, 1, 20)
			d.DepositType = "crypto"
			d.Currency = oneOf(g.rng, model.SupportedCrypto)
			d.Amount = g.sats(0.001, 10)
			d.PaymentMethod = "blockchain"
			d.Confirmations = &confirmations
		}
		d.Status = pick(g.rng, []weighted[string]{
			{"completed", 90}, {"pending", 7}, {"failed", 3},
		})
		d.CreatedAt = d.Timestamp
		out[i] = d
	}
	return out, nil
}

// Withdrawals generates n withdrawals against accountIDs.
func (g *Generator) Withdrawals(n int, accountIDs []string) ([]model.Withdrawal, error) {
	if len(accountIDs) == 0 {
		return nil, fmt.Errorf("withdrawals: %w", ErrNoKeys)
	}
	out := make([]model.Withdrawal, n)
	for i := range out {
		w := model.Withdrawal{
			WithdrawalID: g.newID(),
			AccountID:    oneOf(g.rng, accountIDs),
			Timestamp:    g.recent(),
		}
		if chance(g.rng, 0.6) {
			w.WithdrawalType = "crypto"
			w.Currency = oneOf(g.rng, model.SupportedCrypto)
			w.Amount = g.sats(0.001, 5)
			w.Fee = w.Amount.Mul(cryptoWithdrawal).Round(8)
			w.DestinationType = "wallet_address"
			if chance(g.rng, 0.85) {
				h := g.txHash()
				w.TxHash = &h
			}
		} else {
			w.WithdrawalType = "fiat"
			w.Currency = oneOf(g.rng, model.SupportedFiat)
			w.Amount = g.cents(100, 50000)
			w.Fee = fiatWithdrawal
			w.DestinationType = oneOf(g.rng, []string{"bank_account", "card"})
		}
		w.Status = pick(g.rng, []weighted[string]{
			{"completed", 85}, {"pending", 10}, {"failed", 3}, {"rejected", 2},
		})
		w.CreatedAt = w.Timestamp
		out[i] = w
	}
	return out, nil
}

func (g *Generator) txHash() string {
	var b [32]byte
	_, _ = g.ids.Read(b[:])
	return hex.EncodeToString(b[:])
}

// marketPrice is the price of one unit of base in quote fiat.
func (g *Generator) marketPrice(base, quote string) decimal.Decimal {
	return g.quotes.Price(base).Mul(g.quotes.Rate(quote)).Round(2)
}

// Orders generates n orders against accountIDs.
func (g *Generator) Orders(n int, accountIDs []string) ([]model.Order, error) {
	if len(accountIDs) == 0 {
		return nil, fmt.Errorf("orders: %w", ErrNoKeys)
	}
	out := make([]model.Order, n)
	for i := range out {
		base := oneOf(g.rng, model.SupportedCrypto)
		quote := oneOf(g.rng, model.SupportedFiat)
		o := model.Order{
			OrderID:       g.newID(),
			AccountID:     oneOf(g.rng, accountIDs),
			Timestamp:     g.recent(),
			TradingPair:   base + "/" + quote,
			Side:          oneOf(g.rng, []string{"buy", "sell"}),
			OrderType:     oneOf(g.rng, []string{"limit", "market"}),
			BaseCurrency:  base,
			QuoteCurrency: quote,
			BaseAmount:    g.sats(0.01, 50),
		}
		if o.OrderType == "limit" {
			// Within 5% of market.
			variation := decimal.New(between(g.rng, 9500, 10500), -4)
			limit := g.marketPrice(base, quote).Mul(variation).Round(2)
			o.LimitPrice = &limit
		}
		o.Status = pick(g.rng, []weighted[string]{
			{model.OrderStatusFilled, 40},
			{model.OrderStatusOpen, 30},
			{model.OrderStatusCancelled, 20},
			{model.OrderStatusPartiallyFilled, 8},
			{model.OrderStatusExpired, 2},
		})
		switch o.Status {
		case model.OrderStatusFilled:
			o.FilledAmount = o.BaseAmount
		case model.OrderStatusPartiallyFilled:
			fraction := decimal.New(between(g.rng, 10, 90), -2)
			o.FilledAmount = o.BaseAmount.Mul(fraction).Round(8)
		default:
			o.FilledAmount = decimal.Zero
		}
		o.CreatedAt = o.Timestamp
		out[i] = o
	}
	return out, nil
}

// Executions derives one trade per fillable order. Orders in any other
// status are skipped.
func (g *Generator) Executions(orders []model.OrderRef) []model.Execution {
	out := make([]model.Execution, 0, len(orders))
	for _, o := range orders {
		if !model.IsFillable(o.Status) {
			continue
		}

		var price decimal.Decimal
		if o.LimitPrice != nil {
			price = *o.LimitPrice
		} else {
			price = g.marketPrice(o.BaseCurrency, o.QuoteCurrency)
			if !price.IsPositive() {
				price = g.cents(1000, 100000)
			}
		}

		isMaker := chance(g.rng, 0.5)
		feeRate := takerFeeRate
		if isMaker {
			feeRate = makerFeeRate
		}
		quoteAmount := o.FilledAmount.Mul(price).Round(8)

		out = append(out, model.Execution{
			TradeID:       g.newID(),
			OrderID:       o.OrderID,
			AccountID:     o.AccountID,
			Timestamp:     o.Timestamp,
			TradingPair:   o.TradingPair,
			Side:          o.Side,
			BaseCurrency:  o.BaseCurrency,
			QuoteCurrency: o.QuoteCurrency,
			BaseAmount:    o.FilledAmount,
			QuoteAmount:   quoteAmount,
			Price:         price,
			FeeAmount:     quoteAmount.Mul(feeRate).Round(8),
			FeeCurrency:   o.QuoteCurrency,
			OrderType:     o.OrderType,
			IsMaker:       isMaker,
			CreatedAt:     o.Timestamp,
		})
	}
	return out
}

// RampTransactions generates n on-ramp purchases timestamped within day.
func (g *Generator) RampTransactions(n int, day time.Time, accountIDs []string) ([]model.RampTransaction, error) {
	if len(accountIDs) == 0 {
		return nil, fmt.Errorf("ramp transactions: %w", ErrNoKeys)
	}
	day = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)

	out := make([]model.RampTransaction, n)
	for i := range out {
		fiat := oneOf(g.rng, model.SupportedFiat)
		token := oneOf(g.rng, model.SupportedCrypto)
		fiatAmount := g.cents(20, 5000)

		amountUSD := fiatAmount.DivRound(g.quotes.Rate(fiat), 16)
		netUSD := amountUSD.Sub(amountUSD.Mul(rampFeeRate))
		cryptoAmount := decimal.Zero
		if price := g.quotes.Price(token); price.IsPositive() {
			cryptoAmount = netUSD.DivRound(price, 8)
		}

		out[i] = model.RampTransaction{
			TransactionID: g.newID(),
			AccountID:     oneOf(g.rng, accountIDs),
			Timestamp:     g.within(day),
			FiatCurrency:  fiat,
			FiatAmount:    fiatAmount,
			CryptoToken:   token,
			CryptoAmount:  cryptoAmount,
			PaymentMethod: oneOf(g.rng, model.PaymentMethods),
			Country:       oneOf(g.rng, countries),
			Status: pick(g.rng, []weighted[string]{
				{"completed", 85}, {"failed", 10}, {"pending", 5},
			}),
			FeeUSD: amountUSD.Mul(rampFeeRate).Round(2),
		}
	}
	return out, nil
}
