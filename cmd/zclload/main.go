package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/vvka-141/zclload/internal/cli"
	"github.com/vvka-141/zclload/pkg/zclload"
)

func main() {
	// Recover from panics to ensure graceful exits with stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "panic: %v\n%s\n", r, debug.Stack())
			os.Exit(zclload.ExitPanic)
		}
	}()

	if os.Getenv("ZCLLOAD_TEST_PANIC") == "1" {
		panic("intentional test panic")
	}

	if err := cli.Execute(); err != nil {
		os.Exit(zclload.ExitCodeForError(err))
	}
}
