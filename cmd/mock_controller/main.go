package main

import (
	"log"

	"github.com/Sadra-Hemmati/voicedrive/internal/app"
)

func main() {
	log.Println("starting voicedrive (mock controller)")

	if err := app.RunMockController(); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
