package main

import "github.com/rustyeddy/marketmind/internal/cli"

func main() {
	cli.Execute()
}
