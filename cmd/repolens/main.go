package main

import "github.com/repolens/repolens/internal/cli"

func main() {
	cli.Execute()
}
