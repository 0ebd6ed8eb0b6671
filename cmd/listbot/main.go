package main

import (
	"os"

	"listbot/cmd/listbot/cmd"
)

func main() {
	os.Exit(cmd.Execute(os.Args[1:], os.Stdout, os.Stderr, &cmd.Config{}))
}
