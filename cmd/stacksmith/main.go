package main

import "os"

// Version information (set by build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

// Exit codes
const (
	ExitSuccess = 0
	ExitFailure = 1
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cmd := newRootCmd()
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		return ExitFailure
	}
	return ExitSuccess
}
