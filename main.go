package main

import "mspro-labs/flat-scout/cmd"

func main() {
	cmd.Execute()
}
