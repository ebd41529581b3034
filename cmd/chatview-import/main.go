package main

import (
	"fmt"
	"os"
)

var version = "dev"

func main() {
	if err := importCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
