package main

import (
	"flag"
	"log"
	"os"

	"github.com/df07/go-collision-volumes/web/server"
)

func main() {
	// Parse command line flags
	port := flag.Int("port", 8080, "Port to serve on")
	scenesDir := flag.String("scenes", "../scenes", "Directory of stored scene files")
	flag.Parse()

	// Create and start web server
	webServer := server.NewServer(*port, *scenesDir)

	log.Printf("Collision Volumes Web Server")
	log.Printf("POST a scene to http://localhost:%d/api/query to run its queries", *port)

	if err := webServer.Start(); err != nil {
		log.Printf("Error starting server: %v", err)
		os.Exit(1)
	}
}
