// Command agriledger records debts, escrows, crop insurance policies and
// insurance claims, and serves them over HTTP.
package main

import (
	"os"

	"github.com/mesh-intelligence/agriledger/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
