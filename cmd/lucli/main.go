// Command lucli manages per-project embedded CFML application server
// instances.
package main

import (
	"fmt"
	"os"

	"github.com/cybersonic/lucli/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
