package main

import "arrangement_bot/cmd/bot/cmd"

func main() {
	cmd.Execute()
}
