package cmd

import (
	"github.com/mizar-render/mizar/log"
	"github.com/urfave/cli"
)

var logger = log.New("mizar")

func setupLogging(ctx *cli.Context) {
	if ctx.GlobalBool("v") {
		log.SetLevel(log.Info)
	}

	if ctx.GlobalBool("vv") {
		log.SetLevel(log.Debug)
	}
}
