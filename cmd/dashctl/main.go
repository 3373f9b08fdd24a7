package main

import (
	"os"

	"github.com/dataloft-systems/dataloft-backend/cmd/dashctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
