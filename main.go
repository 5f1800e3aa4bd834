package main

import "github.com/rnwolfe/blight/cmd"

func main() {
	cmd.Execute()
}
