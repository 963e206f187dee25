package main

import "github.com/Vamsi2511999/Superproductive-AI-Agent/cmd/superproductive/commands"

func main() {
	commands.Execute()
}
