package main

import "github.com/RealHickory4944/puter/cmd"

func main() {
	cmd.Execute()
}
