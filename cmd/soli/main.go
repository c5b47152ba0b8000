package main

import (
	"os"

	"github.com/solisoft/soli-lang-sub002/pkg/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:]))
}
