package main

import "github.com/gclog-analysis/cmd/cli/cmd"

func main() {
	cmd.Execute()
}
