package main

import "github.com/jsphweid/midilib/cmd"

func main() {
	cmd.Execute()
}
