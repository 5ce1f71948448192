// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

//go:build mage

// Package main provides build targets for the agriledger project using Mage.
//
// Usage:
//
//	mage build        Compile the agriledger binary to bin/
//	mage test:unit    Run unit tests
//	mage test:race    Run unit tests with the race detector
//	mage test:cover   Run unit tests and write coverage.out
//	mage lint         Run golangci-lint
//	mage vet          Run go vet
//	mage clean        Remove build artifacts
//	mage install      Install agriledger to GOPATH/bin
//	mage serve        Build and run the HTTP server
//	mage stats        Print Go lines of code
package main

import (
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binGo      = "go"
	binLint    = "golangci-lint"
	binaryName = "agriledger"
	binaryDir  = "bin"
	cmdDir     = "./cmd/agriledger"
)

// Default target when mage is run without arguments.
var Default = Build

// Build compiles the agriledger binary to bin/.
func Build() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	return sh.RunV(binGo, "build", "-o", binaryPath(), cmdDir)
}

// Clean removes build artifacts.
func Clean() error {
	for _, p := range []string{binaryDir, coverProfile} {
		if err := os.RemoveAll(p); err != nil {
			return err
		}
	}
	return sh.RunV(binGo, "clean")
}

// Install builds and copies the binary to GOPATH/bin.
func Install() error {
	mg.Deps(Build)
	gopath, err := sh.Output(binGo, "env", "GOPATH")
	if err != nil {
		return err
	}
	return sh.Copy(filepath.Join(gopath, "bin", binaryName), binaryPath())
}

// Serve builds the binary and runs the HTTP server on :8080.
func Serve() error {
	mg.Deps(Build)
	return sh.RunV(binaryPath(), "serve", "--verbose")
}

// Lint runs golangci-lint.
func Lint() error {
	return sh.RunV(binLint, "run", "./...")
}

// Vet runs go vet.
func Vet() error {
	return sh.RunV(binGo, "vet", "./...")
}

func binaryPath() string {
	return filepath.Join(binaryDir, binaryName)
}
