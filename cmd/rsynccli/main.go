// Command rsynccli is a thin cobra-based driver over the synccore engine:
// a reference consumer of the programmatic API in internal/orchestrator,
// not the product itself. A CLI is the cheapest way to exercise the
// engine end to end without a host application.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
