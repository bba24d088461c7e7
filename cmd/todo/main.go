package main

import (
	"context"
	"os"

	"github.com/Tomlord1122/todo/internal/cli"
)

func main() {
	os.Exit(cli.Execute(context.Background(), os.Args[1:]))
}
