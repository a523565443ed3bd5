package main

import (
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/veyra-io/docflowgo/internal/config"
	"github.com/veyra-io/docflowgo/internal/database"
	"github.com/veyra-io/docflowgo/internal/models"
	"github.com/veyra-io/docflowgo/internal/routing"
	"github.com/veyra-io/docflowgo/internal/utils"
)

func main() {
	fmt.Println("🌱 DocFlow Demo Data Seeder")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer db.Close()

	fmt.Println("✅ Connected to database")

	fmt.Println("🔨 Running database migrations...")
	err = db.AutoMigrate(
		&models.Office{},
		&models.UserAuth{},
		&models.Document{},
		&models.DocumentRecipient{},
		&models.DocumentFile{},
		&models.Notification{},
	)
	if err != nil {
		log.Fatalf("❌ Migration failed: %v", err)
	}

	// Offices
	offices := []models.Office{
		{Name: "Records Office", Code: "REC"},
		{Name: "Accounting", Code: "ACCT"},
		{Name: "Human Resources", Code: "HR"},
	}
	for i := range offices {
		if err := db.Where("code = ?", offices[i].Code).FirstOrCreate(&offices[i]).Error; err != nil {
			log.Fatalf("❌ Failed to seed office %s: %v", offices[i].Code, err)
		}
	}
	fmt.Printf("🏢 Seeded %d offices\n", len(offices))

	// Users (password: password123)
	hash, err := utils.HashPassword("password123")
	if err != nil {
		log.Fatalf("❌ Failed to hash demo password: %v", err)
	}
	users := []models.UserAuth{
		{Username: "director", Email: "director@example.com", Name: "Dana Director", Role: models.RoleAdmin, OfficeID: &offices[0].ID, Position: "Director"},
		{Username: "clerk", Email: "clerk@example.com", Name: "Casey Clerk", Role: models.RoleUser, OfficeID: &offices[0].ID, Position: "Records Clerk"},
		{Username: "accountant", Email: "accountant@example.com", Name: "Avery Accountant", Role: models.RoleUser, OfficeID: &offices[1].ID, Position: "Accountant"},
		{Username: "hrhead", Email: "hr@example.com", Name: "Harper HR", Role: models.RoleUser, OfficeID: &offices[2].ID, Position: "HR Head"},
	}
	for i := range users {
		users[i].Password = hash
		users[i].IsActive = true
		if err := db.Where("username = ?", users[i].Username).FirstOrCreate(&users[i]).Error; err != nil {
			log.Fatalf("❌ Failed to seed user %s: %v", users[i].Username, err)
		}
	}
	fmt.Printf("👥 Seeded %d users\n", len(users))

	// One routed document: clerk -> accountant (through) -> hrhead (final)
	doc := models.Document{
		OwnerID:      users[1].ID,
		Subject:      "Purchase request: office chairs",
		Type:         models.DocTypeOrder,
		Status:       models.DocStatusDraft,
		TrackingCode: uuid.New().String(),
	}
	if err := db.Where("subject = ?", doc.Subject).FirstOrCreate(&doc).Error; err != nil {
		log.Fatalf("❌ Failed to seed document: %v", err)
	}

	if doc.Status == models.DocStatusDraft {
		engine := routing.NewEngine(db.DB)
		_, err = engine.Send(doc.ID, users[1].ID, routing.SendRequest{
			InitialRecipientID: users[2].ID,
			ThroughUserIDs:     []string{users[3].ID},
		})
		if err != nil {
			log.Fatalf("❌ Failed to route demo document: %v", err)
		}
		fmt.Println("📄 Routed demo document through accounting to HR")
	}

	fmt.Println("✅ Demo data ready. Log in as director@example.com / password123")
}
