package main

import (
	"os"

	"github.com/Shaykeh/ShayQuickNote/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
