package main

import "rukami/cmd/commands"

func main() {
	commands.Execute()
}
