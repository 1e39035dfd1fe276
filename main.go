package main

import "github.com/karolswdev/codeprompt/cmd"

func main() {
	cmd.Execute()
}
