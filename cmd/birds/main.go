package main

import "savethebirds/internal/cli"

func main() {
	cli.Execute()
}
