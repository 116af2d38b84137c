package main

import "terralink/internal/cli"

func main() {
	cli.Execute()
}
