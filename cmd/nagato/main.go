// nagato is a microblog bot that recommends books to the people who mention it.
// Each invocation runs a single pass and exits; schedule it with cron or a timer.
package main

import (
	"os"

	"nagato/cmd/nagato/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
