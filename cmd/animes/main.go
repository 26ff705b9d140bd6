//go:build !test

// Code coverage for main is ignored; the commands are exercised in commands_test.go.
package main

import (
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
