package main

import "novelhub/cmd/cli/command"

func main() {
	command.Execute()
}
