package main

import (
	"fmt"
	"os"

	"github.com/onelson/estuary/internal/server"
)

func main() {
	if err := server.RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
