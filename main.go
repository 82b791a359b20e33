// Package main is the entry point for the testpulse CLI.
package main

import "testpulse/cmd"

func main() {
	cmd.Execute()
}
