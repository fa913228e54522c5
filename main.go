package main

import "github.com/kamusis/kbot/cmd"

func main() {
	cmd.Execute()
}
