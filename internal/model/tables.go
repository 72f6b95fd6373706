package model

// Table names a warehouse table.
type Table string

// Warehouse tables. The first five are loaded once per environment,
// RampTransactions is appended one batch per calendar date.
const (
	TableAccounts         Table = "accounts"
	TableDeposits         Table = "deposits"
	TableWithdrawals      Table = "withdrawals"
	TableOrders           Table = "orders"
	TableExecutions       Table = "trades"
	TableRampTransactions Table = "ramp_transactions"
)

// OneTimeTables lists the tables gated by checkpoint flags, in load order.
var OneTimeTables = []Table{
	TableAccounts,
	TableDeposits,
	TableWithdrawals,
	TableOrders,
	TableExecutions,
}

// ColumnType is the logical type of a column. Sinks map it to physical DDL.
type ColumnType int

const (
	TypeString ColumnType = iota
	TypeInt
	TypeDecimal
	TypeBool
	TypeTimestamp
)

func (t ColumnType) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeInt:
		return "int"
	case TypeDecimal:
		return "decimal"
	case TypeBool:
		return "bool"
	case TypeTimestamp:
		return "timestamp"
	default:
		return "unknown"
	}
}

// Column describes one column of a table.
type Column struct {
	Name     string
	Type     ColumnType
	Nullable bool
}

// Schema is the fixed layout of a warehouse table.
type Schema struct {
	Table    Table
	IDColumn string
	Columns  []Column
}

// ColumnNames returns the column names in declaration order.
func (s Schema) ColumnNames() []string {
	names := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = c.Name
	}
	return names
}

// Record is a row that can be appended to its table.
type Record interface {
	Values() []any
}

func col(name string, t ColumnType) Column { return Column{Name: name, Type: t} }

func nullCol(name string, t ColumnType) Column { return Column{Name: name, Type: t, Nullable: true} }

var schemas = map[Table]Schema{
	TableAccounts: {
		Table:    TableAccounts,
		IDColumn: "account_id",
		Columns: []Column{
			col("account_id", TypeString),
			col("email", TypeString),
			col("signup_date", TypeTimestamp),
			col("country", TypeString),
			col("kyc_status", TypeString),
			col("account_tier", TypeString),
			col("account_balance_usd", TypeDecimal),
			col("is_active", TypeBool),
			col("created_at", TypeTimestamp),
		},
	},
	TableDeposits: {
		Table:    TableDeposits,
		IDColumn: "deposit_id",
		Columns: []Column{
			col("deposit_id", TypeString),
			col("account_id", TypeString),
			col("timestamp", TypeTimestamp),
			col("deposit_type", TypeString),
			col("currency", TypeString),
			col("amount", TypeDecimal),
			col("payment_method", TypeString),
			col("status", TypeString),
			nullCol("blockchain_confirmations", TypeInt),
			col("created_at", TypeTimestamp),
		},
	},
	TableWithdrawals: {
		Table:    TableWithdrawals,
		IDColumn: "withdrawal_id",
		Columns: []Column{
			col("withdrawal_id", TypeString),
			col("account_id", TypeString),
			col("timestamp", TypeTimestamp),
			col("withdrawal_type", TypeString),
			col("currency", TypeString),
			col("amount", TypeDecimal),
			col("fee", TypeDecimal),
			col("destination_type", TypeString),
			nullCol("tx_hash", TypeString),
			col("status", TypeString),
			col("created_at", TypeTimestamp),
		},
	},
	TableOrders: {
		Table:    TableOrders,
		IDColumn: "order_id",
		Columns: []Column{
			col("order_id", TypeString),
			col("account_id", TypeString),
			col("timestamp", TypeTimestamp),
			col("trading_pair", TypeString),
			col("side", TypeString),
			col("order_type", TypeString),
			col("base_currency", TypeString),
			col("quote_currency", TypeString),
			col("base_amount", TypeDecimal),
			col("filled_amount", TypeDecimal),
			nullCol("limit_price", TypeDecimal),
			col("status", TypeString),
			col("created_at", TypeTimestamp),
		},
	},
	TableExecutions: {
		Table:    TableExecutions,
		IDColumn: "trade_id",
		Columns: []Column{
			col("trade_id", TypeString),
			col("order_id", TypeString),
			col("account_id", TypeString),
			col("timestamp", TypeTimestamp),
			col("trading_pair", TypeString),
			col("side", TypeString),
			col("base_currency", TypeString),
			col("quote_currency", TypeString),
			col("base_amount", TypeDecimal),
			col("quote_amount", TypeDecimal),
			col("price", TypeDecimal),
			col("fee_amount", TypeDecimal),
			col("fee_currency", TypeString),
			col("order_type", TypeString),
			col("is_maker", TypeBool),
			col("created_at", TypeTimestamp),
		},
	},
	TableRampTransactions: {
		Table:    TableRampTransactions,
		IDColumn: "transaction_id",
		Columns: []Column{
			col("transaction_id", TypeString),
			col("account_id", TypeString),
			col("timestamp", TypeTimestamp),
			col("fiat_currency", TypeString),
			col("fiat_amount", TypeDecimal),
			col("crypto_token", TypeString),
			col("crypto_amount", TypeDecimal),
			col("payment_method", TypeString),
			col("country", TypeString),
			col("status", TypeString),
			col("fee_usd", TypeDecimal),
		},
	},
}

// SchemaFor returns the schema of a table.
func SchemaFor(t Table) (Schema, bool) {
	s, ok := schemas[t]
	return s, ok
}

// MustSchema returns the schema of a known table and panics otherwise.
func MustSchema(t Table) Schema {
	s, ok := schemas[t]
	if !ok {
		panic("model: unknown table " + string(t))
	}
	return s
}
