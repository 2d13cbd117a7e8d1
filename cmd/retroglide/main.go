// Command retroglide finds retrograde and direct stations of the planets.
//
// Usage:
//
//	retroglide station mercury                 # next retrograde station
//	retroglide station mars --regime direct    # next direct station
//	retroglide periods mercury --from 2020-01-01 --to 2021-01-01
//	retroglide survey                          # every configured body
//	retroglide watch --metrics-addr :9090
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
