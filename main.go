package main

import "github.com/denysvitali/asset-finder/cmd"

func main() {
	cmd.Execute()
}
