package main

import "github.com/icco/xentune/cmd"

func main() {
	cmd.Execute()
}
