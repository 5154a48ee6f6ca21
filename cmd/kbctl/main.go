package main

import (
	"fmt"
	"os"

	"ShortletAssistant/internal/cli"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
