package main

import (
	"os"

	"go-library-backend/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
