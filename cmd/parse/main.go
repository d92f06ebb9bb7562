// Command parse extracts an order record from pasted order text and prints it
// as JSON.
//
//	parse [-strict] [file]
//
// The text is read from file, or from stdin when no file is given.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/gitshopapp/orderreceipt/internal/logging"
	"github.com/gitshopapp/orderreceipt/internal/parser"
	"github.com/gitshopapp/orderreceipt/internal/validation"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	logger := logging.New(logging.Options{Level: slog.LevelWarn, Console: stderr})

	flags := flag.NewFlagSet("parse", flag.ContinueOnError)
	flags.SetOutput(stderr)
	strict := flags.Bool("strict", false, "fail unless the record has every field a receipt needs")
	if err := flags.Parse(args); err != nil {
		return 2
	}
	if flags.NArg() > 1 {
		fmt.Fprintln(stderr, "usage: parse [-strict] [file]")
		return 2
	}

	text, err := readInput(flags.Arg(0), stdin)
	if err != nil {
		logger.Error("failed to read order text", "error", err)
		return 1
	}

	order, err := parser.ExtractFromString(string(text))
	if err != nil {
		logger.Error("failed to extract order", "error", err)
		return 1
	}

	validator := validation.New()
	check := validator.Shape
	if *strict {
		check = validator.Complete
	}
	if err := check(order); err != nil {
		var fieldErrs validation.Errors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				logger.Error("invalid order record", "path", fe.Path, "message", fe.Message)
			}
		} else {
			logger.Error("invalid order record", "error", err)
		}
		return 1
	}

	encoder := json.NewEncoder(stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(order); err != nil {
		logger.Error("failed to encode order", "error", err)
		return 1
	}
	return 0
}

func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}
