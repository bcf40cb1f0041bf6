// Command keylimegen generates and packages Keylime deployment manifests.
package main

import "github.com/cameronsjo/keylimegen/internal/cmd"

func main() {
	cmd.Execute()
}
