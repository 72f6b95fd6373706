package pipeline

import (
	"fmt"

	"github.com/rickgao/rampsim/internal/model"
)

// Step is one load in the dependency order.
type Step struct {
	Name     string
	Table    model.Table
	Requires []model.Table
}

// ReferenceSteps is the fixed load order of the one-time tables.
var ReferenceSteps = []Step{
	{Name: "accounts", Table: model.TableAccounts},
	{Name: "deposits", Table: model.TableDeposits, Requires: []model.Table{model.TableAccounts}},
	{Name: "withdrawals", Table: model.TableWithdrawals, Requires: []model.Table{model.TableAccounts}},
	{Name: "orders", Table: model.TableOrders, Requires: []model.Table{model.TableAccounts}},
	{Name: "executions", Table: model.TableExecutions, Requires: []model.Table{model.TableOrders}},
}

// IncrementStep appends one date of ramp transactions.
var IncrementStep = Step{
	Name:     "ramp_transactions",
	Table:    model.TableRampTransactions,
	Requires: []model.Table{model.TableAccounts},
}

// ValidateOrder checks that every step appears once and after everything it requires.
func ValidateOrder(steps []Step) error {
	seen := make(map[model.Table]bool, len(steps))
	for i, s := range steps {
		if seen[s.Table] {
			return fmt.Errorf("step %d (%s): table %s appears twice", i, s.Name, s.Table)
		}
		for _, req := range s.Requires {
			if !seen[req] {
				return fmt.Errorf("step %d (%s): requires %s, which does not precede it", i, s.Name, req)
			}
		}
		seen[s.Table] = true
	}
	return nil
}
