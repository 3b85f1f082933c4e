package main

import "github.com/minestax-uz/web/cmd/panelctl/cmd"

func main() {
	cmd.Execute()
}
