package main

import "github.com/radityasurya/pharmacy-network/cmd"

func main() {
	cmd.Execute()
}
