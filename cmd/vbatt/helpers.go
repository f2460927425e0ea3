package main

import (
	"fmt"

	"github.com/pterodyne/linux-userspace-battery/pkg/version"
)

// rawArg returns the single raw-text argument of a set command. The
// daemon does the parsing, so values like 0x10 pass through untouched.
func rawArg(args []string, valueName string) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("invalid number of arguments")
	}

	if args[0] == "" {
		return "", fmt.Errorf("%s must not be empty", valueName)
	}

	return args[0], nil
}

// getVersion returns the client version and the daemon version.
func getVersion() (string, string, error) {
	daemonVersion, err := apiClient.GetVersion()
	if err != nil {
		return version.Version, "", err
	}

	return version.Version, daemonVersion, nil
}
