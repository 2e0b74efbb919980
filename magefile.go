//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Build compiles the server binary.
func Build() error {
	fmt.Println("Building...")
	return sh.RunV("go", "build", "-o", "bin/server", "./cmd/server")
}

// Run starts the server.
func Run() error {
	mg.Deps(Build)
	return sh.RunV("./bin/server")
}

// Test runs all tests with race detection.
func Test() error {
	return sh.RunV("go", "test", "-race", "-count=1", "./...")
}

// Cover runs tests with coverage output.
func Cover() error {
	if err := sh.RunV("go", "test", "-coverprofile=coverage.out", "./..."); err != nil {
		return err
	}
	return sh.RunV("go", "tool", "cover", "-html=coverage.out", "-o", "coverage.html")
}

// Lint runs go vet and golangci-lint if available.
func Lint() error {
	if err := sh.RunV("go", "vet", "./..."); err != nil {
		return err
	}
	if _, err := sh.Output("which", "golangci-lint"); err == nil {
		return sh.RunV("golangci-lint", "run")
	}
	return nil
}

// Swagger regenerates the OpenAPI document from handler annotations.
func Swagger() error {
	return sh.RunV("swag", "init",
		"-g", "cmd/server/main.go",
		"-o", "cmd/server/docs",
		"--parseInternal",
	)
}

// Tidy runs go mod tidy.
func Tidy() error {
	return sh.RunV("go", "mod", "tidy")
}
