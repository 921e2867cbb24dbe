// mjconv converts directories of tenhou.net/6 game logs into mjai event
// files, one JSON event per line.
package main

import (
	"os"

	"github.com/mjlog/mjconv/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
