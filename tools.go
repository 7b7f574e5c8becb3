//go:build tools

package main

// Pins CLI tool dependencies so `go mod tidy` keeps them.
import (
	_ "github.com/swaggo/swag"
)
