package main

import (
	"TempoFM/cmd"
)

func main() {
	// Cobra handles errors and exit codes; nothing to do after Execute
	// returns successfully.
	cmd.Execute()
}
