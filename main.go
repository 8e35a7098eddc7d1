package main

import (
	"os"

	"github.com/firefly-engineering/vivarium/cmd"
	"github.com/firefly-engineering/vivarium/internal/errors"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(errors.GetExitCode(err))
	}
}
