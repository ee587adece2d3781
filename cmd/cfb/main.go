// Cfb compiles, caches and runs single-file programs.
package main

import "github.com/albertocavalcante/cfb/cmd/cfb/internal/cli"

func main() {
	cli.Execute()
}
