package main

import "github.com/user/linkfind/cmd"

func main() {
	cmd.Execute()
}
