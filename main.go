package main

import "github.com/hurou927/db-join-path/cmd"

func main() {
	cmd.Execute()
}
