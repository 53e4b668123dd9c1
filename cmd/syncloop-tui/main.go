package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/handiism/syncloop/internal/config"
	"github.com/handiism/syncloop/internal/tui"
)

func main() {
	var (
		loopFlag   = flag.String("loop", "", "Loop document URL or path to open on start")
		configFlag = flag.String("config", "", "Path to config file")
	)
	flag.Parse()

	settings := config.DefaultSettings()
	if *configFlag != "" {
		var err error
		settings, err = config.Load(*configFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	location := *loopFlag
	if location == "" && flag.NArg() > 0 {
		location = flag.Arg(0)
	}

	if err := tui.Run(settings, location); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
