// Command sourcewatch is the CLI client for a running watchdog daemon.
package main

import (
	"fmt"
	"os"

	"github.com/me/sourcewatch/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
