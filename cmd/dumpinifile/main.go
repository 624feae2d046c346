// Command dumpinifile parses an INI file and dumps its section/key/value
// tree, the Go analog of dump-inifile.c.
package main

import (
	"fmt"
	"os"

	"github.com/kornnellio/svcsuper/internal/inifile"
)

func usage() {
	fmt.Fprintln(os.Stderr, "usage: dumpinifile inifile")
	os.Exit(1)
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	f, err := inifile.Parse(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "dumpinifile: %v\n", err)
		os.Exit(1)
	}

	for _, sec := range f.Sections {
		fmt.Printf("[%s]\n", sec.Name)
		for _, e := range sec.Entries {
			fmt.Printf("  %s = %s\n", e.Key, e.Value)
		}
	}
}
