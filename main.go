package main

import "github.com/malramsay64/decimator/cmd"

func main() {
	cmd.Execute()
}
