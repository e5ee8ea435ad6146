// Command ledger records personal expenses and reports on them.
package main

import (
	"os"

	"ledger/cmd/ledger/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
