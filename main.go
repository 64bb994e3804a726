package main

import "github.com/IDSolutions/ramdb/cmd"

func main() {
	cmd.Execute()
}
