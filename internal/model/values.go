package model

// Values implementations return columns in the order declared in tables.go.

func nullable[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

func (a Account) Values() []any {
	return []any{
		a.AccountID, a.Email, a.SignupDate, a.Country, a.KYCStatus,
		a.Tier, a.BalanceUSD, a.IsActive, a.CreatedAt,
	}
}

func (d Deposit) Values() []any {
	return []any{
		d.DepositID, d.AccountID, d.Timestamp, d.DepositType, d.Currency,
		d.Amount, d.PaymentMethod, d.Status, nullable(d.Confirmations), d.CreatedAt,
	}
}

func (w Withdrawal) Values() []any {
	return []any{
		w.WithdrawalID, w.AccountID, w.Timestamp, w.WithdrawalType, w.Currency,
		w.Amount, w.Fee, w.DestinationType, nullable(w.TxHash), w.Status, w.CreatedAt,
	}
}

func (o Order) Values() []any {
	return []any{
		o.OrderID, o.AccountID, o.Timestamp, o.TradingPair, o.Side, o.OrderType,
		o.BaseCurrency, o.QuoteCurrency, o.BaseAmount, o.FilledAmount,
		nullable(o.LimitPrice), o.Status, o.CreatedAt,
	}
}

func (e Execution) Values() []any {
	return []any{
		e.TradeID, e.OrderID, e.AccountID, e.Timestamp, e.TradingPair, e.Side,
		e.BaseCurrency, e.QuoteCurrency, e.BaseAmount, e.QuoteAmount, e.Price,
		e.FeeAmount, e.FeeCurrency, e.OrderType, e.IsMaker, e.CreatedAt,
	}
}

func (r RampTransaction) Values() []any {
	return []any{
		r.TransactionID, r.AccountID, r.Timestamp, r.FiatCurrency, r.FiatAmount,
		r.CryptoToken, r.CryptoAmount, r.PaymentMethod, r.Country, r.Status, r.FeeUSD,
	}
}

// Rows converts records to positional rows for a sink.
func Rows[T Record](records []T) [][]any {
	rows := make([][]any, len(records))
	for i, r := range records {
		rows[i] = r.Values()
	}
	return rows
}
