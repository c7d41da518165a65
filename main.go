package main

import "github.com/user/riskcore/cmd"

func main() {
	cmd.Execute()
}
