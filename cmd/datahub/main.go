package main

import (
	"os"

	"github.com/datahub/backend/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
