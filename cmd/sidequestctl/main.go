package main

import "github.com/dalemusser/sidequest/cmd/sidequestctl/root"

func main() {
	root.Execute()
}
