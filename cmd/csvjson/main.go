package main

import "github.com/turbolytics/csvjson/internal/cmd"

func main() {
	cmd.Execute()
}
