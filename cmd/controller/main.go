// Copyright (c) 2026 Sadra Hemmati
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"flag"
	"log"

	"github.com/Sadra-Hemmati/voicedrive/internal/app"
	"github.com/Sadra-Hemmati/voicedrive/internal/config"
)

func main() {
	configPath := flag.String("config", "./voicedrive_config.txt", "path to configuration file")
	flag.Parse()

	log.Println("starting voicedrive controller (button → capture → classify → motor)")

	// Load configuration
	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := app.RunController(); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
