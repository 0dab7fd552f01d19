package main

import (
	"fmt"
	"os"

	"github.com/teranos/filestore/cmd/filestore/commands"
	"github.com/teranos/filestore/logger"
)

func main() {
	err := commands.NewRootCmd().Execute()
	logger.Cleanup()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
