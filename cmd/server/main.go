package main

import (
	"log"
	"os"

	"issue-tracker-api/internal/database"
	"issue-tracker-api/internal/routes"

	"github.com/joho/godotenv"
)

func main() {
	// Load .env if present; real environments set vars directly
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment as-is")
	}

	// Init database
	database.InitDB()

	// Setup the routes (public and protected routes)
	ginRoutes := routes.SetupRoutes()

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "5000"
	}
	addr := ":" + port
	log.Printf("Server starting on port %s", addr)
	log.Println("API endpoints:")
	log.Println("  POST   /api/users/register")
	log.Println("  POST   /api/users/login")
	log.Println("  GET    /api/projects")
	log.Println("  GET    /api/tasks/:projectId")
	log.Println("  POST   /api/tasks")
	log.Println("  PUT    /api/tasks/:id")
	log.Println("  DELETE /api/tasks/:id")
	log.Println("  POST   /api/tasks/:id/timer/start")
	log.Println("  POST   /api/tasks/:id/timer/stop")
	log.Println("  GET    /health")

	if err := ginRoutes.Run(addr); err != nil {
		log.Fatal("Failed to start server: ", err)
	}
}
