// Command edgedev inspects and edits IoT Edge deployment manifests.
package main

import "github.com/cameronsjo/edgedev/internal/cmd"

func main() {
	cmd.Execute()
}
