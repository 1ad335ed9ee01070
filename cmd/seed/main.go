package main

import (
	"log"

	"github.com/stackmentor/backend/internal/config"
	"github.com/stackmentor/backend/internal/database"
	"github.com/stackmentor/backend/internal/models"
)

// catalog is the initial technology list. Seeding is idempotent: rows
// are matched by name, existing rows are left untouched.
var catalog = []models.Technology{
	{Name: "Python", Category: "Language", Description: "General-purpose language popular for backend, scripting and data work"},
	{Name: "JavaScript", Category: "Language", Description: "The language of the web, on both client and server"},
	{Name: "TypeScript", Category: "Language", Description: "Typed superset of JavaScript"},
	{Name: "Java", Category: "Language", Description: "JVM language widely used in enterprise backends"},
	{Name: "C#", Category: "Language", Description: ".NET language for web, desktop and game development"},
	{Name: "C++", Category: "Language", Description: "Systems language for performance-critical software"},
	{Name: "Go", Category: "Language", Description: "Compiled language built for concurrent network services"},
	{Name: "Rust", Category: "Language", Description: "Memory-safe systems language"},
	{Name: "Ruby", Category: "Language", Description: "Dynamic language known for developer productivity"},
	{Name: "PHP", Category: "Language", Description: "Server-side scripting language powering much of the web"},
	{Name: "Swift", Category: "Language", Description: "Apple's language for iOS and macOS development"},
	{Name: "Kotlin", Category: "Language", Description: "Modern JVM language, primary for Android"},

	{Name: "React", Category: "Frontend", Description: "Component-based UI library"},
	{Name: "Vue.js", Category: "Frontend", Description: "Progressive frontend framework"},
	{Name: "Angular", Category: "Frontend", Description: "Full-featured frontend framework"},
	{Name: "Next.js", Category: "Frontend", Description: "React framework with server-side rendering"},
	{Name: "Svelte", Category: "Frontend", Description: "Compiler-based frontend framework"},

	{Name: "Node.js", Category: "Backend", Description: "JavaScript runtime for server-side applications"},
	{Name: "Django", Category: "Backend", Description: "Batteries-included Python web framework"},
	{Name: "FastAPI", Category: "Backend", Description: "Async Python API framework"},
	{Name: "Flask", Category: "Backend", Description: "Minimal Python web framework"},
	{Name: "Spring Boot", Category: "Backend", Description: "Java framework for production-grade services"},
	{Name: "Express.js", Category: "Backend", Description: "Minimal Node.js web framework"},
	{Name: "Ruby on Rails", Category: "Backend", Description: "Convention-over-configuration web framework"},
	{Name: "Gin", Category: "Backend", Description: "Fast Go HTTP framework"},

	{Name: "PostgreSQL", Category: "Database", Description: "Advanced open-source relational database"},
	{Name: "MySQL", Category: "Database", Description: "Widely deployed relational database"},
	{Name: "MongoDB", Category: "Database", Description: "Document-oriented NoSQL database"},
	{Name: "Redis", Category: "Database", Description: "In-memory data store for caching and queues"},
	{Name: "SQLite", Category: "Database", Description: "Embedded relational database"},
	{Name: "Elasticsearch", Category: "Database", Description: "Distributed search and analytics engine"},

	{Name: "Docker", Category: "DevOps", Description: "Container packaging and runtime"},
	{Name: "Kubernetes", Category: "DevOps", Description: "Container orchestration platform"},
	{Name: "AWS", Category: "Cloud", Description: "Amazon's cloud platform"},
	{Name: "Google Cloud", Category: "Cloud", Description: "Google's cloud platform"},
	{Name: "Azure", Category: "Cloud", Description: "Microsoft's cloud platform"},
	{Name: "Terraform", Category: "DevOps", Description: "Infrastructure as code tool"},
	{Name: "Git", Category: "Tools", Description: "Distributed version control"},
	{Name: "GraphQL", Category: "Tools", Description: "Query language for APIs"},
	{Name: "Kafka", Category: "Tools", Description: "Distributed event streaming platform"},
	{Name: "RabbitMQ", Category: "Tools", Description: "Message broker for asynchronous workloads"},
}

func main() {
	cfg := config.Load()
	database.Connect(cfg)
	database.Migrate()

	created := 0
	for _, tech := range catalog {
		var existing models.Technology
		result := database.DB.Where("name = ?", tech.Name).First(&existing)
		if result.Error == nil {
			continue
		}

		if err := database.DB.Create(&tech).Error; err != nil {
			log.Fatalf("Failed to seed technology %q: %v", tech.Name, err)
		}
		created++
	}

	log.Printf("✅ Technology catalog seeded: %d created, %d already present", created, len(catalog)-created)
}
