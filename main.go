package main

import (
	"os"

	"github.com/tsstech/billingbot/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
