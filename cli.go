//go:build cli
// +build cli

package main

import (
	_ "wms.GO/custom"

	"wms.GO/cmd"
	"wms.GO/config"
	"wms.GO/core/logs"
)

func main() {
	config.LoadEnv()
	logs.Console()
	cmd.Execute()
}
