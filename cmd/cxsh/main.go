// cxsh — interactive shell for API connections and agentic workflows.
package main

import "github.com/cx-foundry/cxsh/internal/cli"

func main() {
	cli.Execute()
}
