package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

const exitFailure = 1

func main() {
	os.Exit(run())
}

func run() int {
	if err := newRootCommand().Execute(); err != nil {
		// An interrupt already produced a final summary; repeating the
		// context error would just add noise.
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintf(os.Stderr, "anicat: %v\n", err)
		}
		return exitFailure
	}
	return 0
}
