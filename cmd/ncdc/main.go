package main

import "ncdc/internal/cli"

func main() {
	cli.Execute()
}
