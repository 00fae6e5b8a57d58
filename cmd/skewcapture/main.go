package main

import "skewcapture/internal/cli"

func main() {
	cli.Execute()
}
