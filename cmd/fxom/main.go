package main

import "github.com/agentic-research/fxom/cmd"

func main() {
	cmd.Execute()
}
