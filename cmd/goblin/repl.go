package main

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface is the command surface the REPL drives
type execIface interface {
	Search(ctx context.Context, query string) error
	Next(ctx context.Context) error
	Prev(ctx context.Context) error
	Card(ctx context.Context, uuid string) error
	Samples(ctx context.Context) error
}

const helpText = `Available commands:
  search <name>   search cards by name (page 1)
  next | n        next page of results
  prev | p        previous page of results
  card <uuid>     show a card's prices
  samples         list the sample cards
  help            show this help
  exit | quit     leave the program`

// runREPL reads commands line by line and dispatches them to a. It returns
// on scanner EOF or on "exit"/"quit". Command errors are printed and the
// loop carries on.
func runREPL(ctx context.Context, a execIface, prompt bool, scanner *bufio.Scanner) {
	for {
		if prompt {
			fmt.Print("goblin> ")
		}
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd := strings.ToLower(parts[0])
		arg := strings.Join(parts[1:], " ")

		var err error
		switch cmd {
		case "help", "?":
			printlnFn(helpText)

		case "search", "s":
			if arg == "" {
				printlnFn("Usage: search <card name>")
				continue
			}
			err = a.Search(ctx, arg)

		case "next", "n":
			err = a.Next(ctx)

		case "prev", "p":
			err = a.Prev(ctx)

		case "card", "c":
			if arg == "" {
				printlnFn("Usage: card <uuid>")
				continue
			}
			err = a.Card(ctx, arg)

		case "samples":
			err = a.Samples(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			printlnFn("Error:", err)
		}
	}
}
