// The main package for the swotd executable.
package main

import (
	"github.com/JakeFAU/site-swot/cmd"
)

// main defers all execution to the Cobra CLI.
func main() {
	cmd.Execute()
}
