package main

import "github.com/pfrederiksen/subwatch/internal/cli"

func main() {
	cli.Execute()
}
