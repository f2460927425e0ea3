package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// NewWatchCommand .
func NewWatchCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "watch",
		Short:   "Stream battery change events",
		GroupID: gAdvanced,
		Long: `Stream battery change events as they happen.

One line is printed per effective write, i.e. whenever voltage, capacity
or status actually changed. Interrupt to stop.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			body, err := apiClient.Events()
			if err != nil {
				return fmt.Errorf("failed to subscribe to events: %v", err)
			}
			defer func() {
				_ = body.Close()
			}()

			// SSE frames are "event:" and "data:" lines separated by a
			// blank line.
			scanner := bufio.NewScanner(body)
			name := ""
			for scanner.Scan() {
				line := scanner.Text()
				switch {
				case strings.HasPrefix(line, "event:"):
					name = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
				case strings.HasPrefix(line, "data:"):
					data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
					cmd.Printf("%s %s\n", name, data)
				}
			}

			if err := scanner.Err(); err != nil {
				return fmt.Errorf("event stream ended: %v", err)
			}

			return nil
		},
	}
}
