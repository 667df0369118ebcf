package main

import "library-api/cmd"

func main() {
	cmd.Execute()
}
