package main

import "github.com/nathanhack/fec/cmd"

func main() {
	cmd.Execute()
}
