package main

import "github.com/theirongolddev/payoff/cmd"

func main() {
	cmd.Execute()
}
