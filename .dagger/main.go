// rsum CI
//
// Package main provides reproducible builds and tests locally and in CI.
package main

import (
	"context"

	"dagger/rsum/internal/dagger"
)

// Rsum is the main module for the rsum CI pipeline
type Rsum struct {
	// Project source directory
	//
	// +private
	Source *dagger.Directory
}

// New creates a new rsum CI module instance
func New(
	// Project source directory.
	//
	// +defaultPath="/"
	// +ignore=[".git", "build", "logs", "tmp", ".rsum"]
	source *dagger.Directory,
) *Rsum {
	return &Rsum{
		Source: source,
	}
}

// goContainer returns a Go container with module and build caches mounted
// and the project source at /src. rsum is pure Go, so CGO stays off.
func (r *Rsum) goContainer() *dagger.Container {
	return dag.Container().
		From("golang:1.25-alpine").
		WithEnvVariable("CGO_ENABLED", "0").
		WithMountedCache("/go/pkg/mod", dag.CacheVolume("go-mod")).
		WithMountedCache("/root/.cache/go-build", dag.CacheVolume("go-build")).
		WithWorkdir("/src").
		WithDirectory("/src", r.Source)
}

// Test runs the rsum unit tests via "go test"
func (r *Rsum) Test(ctx context.Context) (string, error) {
	return r.goContainer().
		WithExec([]string{"go", "test", "-v", "./..."}).
		Stdout(ctx)
}

// Vet runs "go vet" over every package
func (r *Rsum) Vet(ctx context.Context) (string, error) {
	return r.goContainer().
		WithExec([]string{"go", "vet", "./..."}).
		Stdout(ctx)
}
