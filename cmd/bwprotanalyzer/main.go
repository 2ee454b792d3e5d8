// Command bwprotanalyzer turns a BWPROT20.DAT audit protocol into a readable change log.
package main

import "github.com/bwprot/bwprotanalyzer/internal/cli"

func main() {
	cli.Execute()
}
