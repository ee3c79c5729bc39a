package main

import (
	"os"

	"github.com/rodgetech/blurhash-demo/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
