package main

import "github.com/notargets/convexenv/cmd"

func main() {
	cmd.Execute()
}
