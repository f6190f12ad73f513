package main

import "lualoc/internal/cli"

func main() {
	cli.Execute()
}
