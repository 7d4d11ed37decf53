package main

import (
	"fmt"
	"os"

	"github.com/ben0x539/eve-log-alert/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, cmd.Diagnostic(err))
		os.Exit(cmd.ExitCode(err))
	}
}
