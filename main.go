package main

import "github.com/averden/mediapull/cmd"

func main() {
	cmd.Execute()
}
