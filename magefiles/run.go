//go:build mage

package main

import (
	"fmt"
	"os"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Builds and runs the demo. GITECHDEMO_CONFIG overrides the configuration file.
func (Run) Engine() error {
	mg.Deps(Build.Engine)

	fmt.Println("Run engine...")
	var args []string
	if cfg := os.Getenv("GITECHDEMO_CONFIG"); cfg != "" {
		args = append(args, cfg)
	}
	if _, err := executeCmd(binaryPath, withArgs(args...), withStream()); err != nil {
		return err
	}
	return nil
}
