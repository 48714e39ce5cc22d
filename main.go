package main

import (
	"os"

	"palviz/visualize"
)

func main() {
	os.Exit(visualize.Execute(os.Args[1:], os.Stdout, os.Stderr))
}
