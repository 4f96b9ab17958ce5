package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/reoky/chainsaw/pkg/shard"
)

// runInspect prints the decoded header of each named shard.
func runInspect(args []string) int {
	fs := flag.NewFlagSet("inspect", flag.ExitOnError)

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, `Usage: chainsaw inspect SHARD...

Print the decoded header of each named shard file.`)
	}

	if err := fs.Parse(args); err != nil {
		return ExitInvalidArgs
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: inspect needs at least one shard name")
		fs.Usage()
		return ExitInvalidArgs
	}

	bad := 0
	for _, path := range fs.Args() {
		hdr, err := shard.ReadHeader(path)
		if err != nil {
			printError(err)
			bad++
			continue
		}
		fmt.Printf("%s: %s\n", path, &hdr)
	}
	if bad > 0 {
		return ExitValidationFailed
	}
	return ExitSuccess
}
