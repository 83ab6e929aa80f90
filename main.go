package main

import (
	"github.com/stleox/spanvault/pkg/cmd"
)

func main() {
	cmd.Execute()
}
