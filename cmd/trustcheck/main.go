// Binary trustcheck reports, for every wallet in a CSV file, whether it holds an active trust line for one issued asset.
package main

import (
	"errors"
	"fmt"
	"os"

	"xrpl-trustcheck/internal/apperr"
)

func main() {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if apperr.IsKind(err, apperr.KindConfiguration) {
			fmt.Fprintf(os.Stderr, "Please ensure XRPL_WEBSOCKET_URL, TOKEN_ISSUER, and TOKEN_CURRENCY are set in .env\n")
		}
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	switch {
	case apperr.IsKind(err, apperr.KindConfiguration):
		return 2
	case apperr.IsKind(err, apperr.KindInput):
		return 3
	case apperr.IsKind(err, apperr.KindConnection):
		return 4
	case errors.Is(err, errInterrupted):
		return 130
	default:
		return 1
	}
}
