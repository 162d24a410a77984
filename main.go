package main

import "github.com/rakivo/stalkr/cmd"

func main() {
	cmd.Execute()
}
