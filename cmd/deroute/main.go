package main

import (
	"log"

	"github.com/MrSnakeDoc/deroute/internal/app"
)

func main() {
	a, err := app.New()
	if err != nil {
		log.Fatalf("❌ deroute failed to start: %v", err)
	}
	if err := a.Run(); err != nil {
		log.Fatalf("❌ deroute stopped with error: %v", err)
	}
}
