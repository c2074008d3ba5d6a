package main

import (
	"os"

	"github.com/luislealdev/nine-minutes-bot-api/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
