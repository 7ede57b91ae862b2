package main

import "github.com/relloyd/csv2athena/cmd"

func main() {
	cmd.Execute()
}
