// Package main provides the combobulate CLI.
package main

import (
	"fmt"
	"log"
	"os"
)

const version = "v0.1.0"

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "version":
		fmt.Printf("combobulate %s\n", version)
	case "xor":
		err = runXOR(os.Args[2:], os.Stdout)
	case "serve":
		err = runServe(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatal(err)
	}
}

func usage() {
	fmt.Println("combobulate - composable neural nets for game agents")
	fmt.Printf("Version: %s\n\n", version)
	fmt.Println("Commands:")
	fmt.Println("  version    Show version")
	fmt.Println("  xor        Train a net on the XOR table and save it as a session")
	fmt.Println("  serve      Serve stored sessions and training progress over HTTP")
}
