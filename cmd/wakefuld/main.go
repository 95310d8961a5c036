package main

import "github.com/SeanZoR/cwac-wakeful/cmd/wakefuld/cmd"

func main() {
	cmd.Execute()
}
