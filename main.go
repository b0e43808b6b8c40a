package main

import "github.com/kiesman99/halation/cmd"

func main() {
	cmd.Execute()
}
