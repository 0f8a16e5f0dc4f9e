package main

import "aipod/cmd"

func main() {
	cmd.Execute()
}
