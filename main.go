package main

import "cmee-tracker/cmd"

func main() {
	cmd.Execute()
}
