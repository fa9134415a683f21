package main

import (
	"os"

	"github.com/mvp-joe/methodex/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
