package main

import (
	"fmt"
	"os"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "check":
		issues, err := runCheck(args)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		if issues > 0 {
			fmt.Fprintf(os.Stderr, "%d issue(s) found\n", issues)
			os.Exit(1)
		}
	case "version":
		fmt.Printf("islet version %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`islet - partial-navigation and island contract checker

Usage:
  islet <command> [arguments]

Commands:
  check <site-dir>   Verify a generated site: island markup contract
                     (data-component, data-props JSON, data-loading) and
                     partial coverage under the /html root
  version            Print version
  help               Show this help`)
}
