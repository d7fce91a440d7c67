// Command station is a terminal music player for the Audius catalog.
package main

import "github.com/tessro/station/internal/cli"

func main() {
	cli.Execute()
}
