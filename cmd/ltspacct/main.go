package main

import (
	"os"

	"github.com/hnrobert/ltspacct/internal/cli"
)

func main() {
	os.Exit(cli.Execute(os.Args[1:]))
}
