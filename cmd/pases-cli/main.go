// Command pases-cli administers a pass server: it creates users, applies
// migrations and bulk-imports workbooks through the HTTP API.
package main

import (
	"log"
	"os"

	"github.com/mimmersdev/pases-universitarios/internal/config"
)

var logger *log.Logger

func main() {
	logger = log.New(os.Stderr, "PASES : ", log.LstdFlags|log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	cli := &commandLine{cfg: cfg, out: os.Stdout}
	defer cli.close()
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("error: %s", err)
		}
		cli.close()
		os.Exit(1)
	}
}
