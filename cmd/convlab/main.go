// Package main provides the convlab CLI.
package main

import (
	"context"

	"github.com/spf13/cobra"
)

const version = "v0.1.0"

func main() {
	cobra.CheckErr(NewCLI().ExecuteContext(context.Background()))
}
