package main

import "github.com/agentic-research/csvfeed/cmd"

func main() {
	cmd.Execute()
}
