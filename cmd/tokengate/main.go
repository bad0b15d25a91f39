package main

import (
	"github.com/basedmerge/tokengate/internal/cli"
)

func main() {
	cli.Execute()
}
