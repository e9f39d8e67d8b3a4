package main

import "warebridge/cmd"

func main() {
	cmd.Execute()
}
