// ABOUTME: Entry point for the homelabcmd CLI
// ABOUTME: Command-line tool and terminal dashboard for the HomelabCmd monitoring backend

package main

import (
	"fmt"
	"os"

	"github.com/DarrenBenson/HomelabCmd-sub011/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
