package main

import "github.com/pkgchew/pkgchew/internal/cli"

func main() {
	cli.Execute()
}
