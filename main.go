package main

import "ytpicker/cmd"

func main() {
	cmd.Execute()
}
