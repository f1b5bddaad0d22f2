// Command microinfer is a demo/host CLI over the core inference
// library: load a model, inspect its shape, and run a single
// inference against it. It is the "user application shell" the core
// package treats as an external collaborator — none of pkg/codec,
// pkg/model, or pkg/kernel import this package.
//
// Usage:
//
//	microinfer load gesture.model
//	microinfer infer gesture.model 0.1,0.2,0.3
//	microinfer inspect gesture.model
//
// Flags:
//
//	--profile string
//	    Path to a microinfer.yaml BuildProfile (default: built-in defaults)
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "microinfer: %v\n", err)
		os.Exit(1)
	}
}
