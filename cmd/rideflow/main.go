package main

import "github.com/example/rideflow/internal/cli"

func main() {
	cli.Execute()
}
