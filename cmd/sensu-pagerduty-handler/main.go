// Package main is the entry point for the Sensu PagerDuty handler.
package main

import (
	"fmt"
	"os"

	"github.com/good-yellow-bee/sensu-pagerduty-handler/cmd/sensu-pagerduty-handler/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
