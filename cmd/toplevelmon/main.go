package main

import "github.com/bryanchriswhite/toplevelmon/cmd/toplevelmon/commands"

func main() {
	commands.Execute()
}
