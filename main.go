// Package main is the entry point for eonplay.
package main

import (
	"github.com/eonplay/eonplay/cmd"
	"github.com/eonplay/eonplay/config"
	"github.com/eonplay/eonplay/log"
	"github.com/samber/lo"
)

func main() {
	lo.Must0(config.Setup())
	lo.Must0(log.Setup())

	cmd.Execute()
}
