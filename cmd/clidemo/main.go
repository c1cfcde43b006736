package main

import (
	"os"

	"github.com/regenrek/clikit/internal/demo"
)

var version = "dev"

func main() {
	os.Exit(demo.Run(os.Args, version))
}
