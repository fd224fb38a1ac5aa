// Package main provides the sqlrender CLI.
//
// Commands:
//   - serve: run the RenderService over Connect
//   - render: render a JSON query document to SQL
//   - dialects: list the registered dialects and function renderers
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
