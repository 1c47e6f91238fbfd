package main

import "github.com/eslsoft/vocengage/cmd"

func main() {
	cmd.Execute()
}
