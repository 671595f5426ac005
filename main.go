package main

import "live-ndvi/cmd"

func main() {
	cmd.Execute()
}
