package main

import "github.com/code-arsenal/arsenal/cmd/arsenal/root"

func main() {
	root.Execute()
}
