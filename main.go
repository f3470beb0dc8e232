package main

import "github.com/fakeyudi/intervals/cmd"

func main() {
	cmd.Execute()
}
