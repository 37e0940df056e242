package main

import (
	"github.com/mkm-lab/analysis-engine/internal/server"
	"github.com/mkm-lab/analysis-engine/internal/util"
	"github.com/mkm-lab/analysis-engine/pkg/logger"
	"github.com/mkm-lab/analysis-engine/pkg/logger/console"
)

func main() {
	util.LoadEnv()

	debug := util.GetEnvBool("DEBUG", false)

	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: debug,
	})
	logger.Init(consoleLogger)

	server.Init()
}
