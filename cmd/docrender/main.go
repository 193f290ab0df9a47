// Command docrender renders delivery notes and quotations as PDF.
//
// # Installation
//
//	go install github.com/lvillar/docrender/cmd/docrender@latest
//
// # Usage
//
//	docrender serve --config docrender.toml
//	docrender render --kind presupuesto quote.json
//	docrender validate --kind remito note.json
//	docrender mcp
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/lvillar/docrender/internal/cli"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := cli.New().RootCommand().ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
