//go:build mage
// +build mage

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Default shows the available targets.
func Default() {
	fmt.Println("expiring-cache build")
	fmt.Println("====================")
	fmt.Println("  mage build  - build the server, demo and benchmark binaries")
	fmt.Println("  mage test   - run unit tests with the race detector")
	fmt.Println("  mage bench  - run the cache benchmarks")
	fmt.Println("  mage lint   - run go vet")
	fmt.Println("  mage clean  - remove build output")
}

// Build compiles every command into ./dist.
func Build() error {
	mg.Deps(Clean)

	targets := []struct {
		name string
		path string
	}{
		{"llmcache-server", "./cmd/server"},
		{"llmcache-demo", "./cmd"},
		{"llmcache-benchmark", "./cmd/benchmark"},
	}

	for _, target := range targets {
		output := filepath.Join("dist", target.name)
		if runtime.GOOS == "windows" {
			output += ".exe"
		}
		fmt.Printf("building %s...\n", target.name)
		env := map[string]string{"CGO_ENABLED": "0"}
		if err := sh.RunWith(env, "go", "build", "-o", output, target.path); err != nil {
			return fmt.Errorf("build %s: %w", target.name, err)
		}
	}
	return nil
}

// Test runs every package's tests with the race detector.
func Test() error {
	return sh.RunV("go", "test", "-race", "-count=1", "./...")
}

// Bench runs the root package benchmarks.
func Bench() error {
	return sh.RunV("go", "test", "-run=^$", "-bench=.", "-benchmem", ".")
}

// Lint runs go vet.
func Lint() error {
	return sh.RunV("go", "vet", "./...")
}

// Clean removes build output.
func Clean() error {
	return os.RemoveAll("dist")
}
