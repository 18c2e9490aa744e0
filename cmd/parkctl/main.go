// Command parkctl serves and operates the park zone engine.
package main

import (
	"os"

	"parkcore/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
