// Command rampsim loads simulated exchange data into a warehouse.
//
// Reference tables (accounts, deposits, withdrawals, orders, trades) are
// loaded once per environment; ramp transactions are appended one calendar
// date per run. Progress is kept in a checkpoint so reruns pick up where the
// last committed step left off.
package main

import "os"

func main() {
	os.Exit(execute())
}
