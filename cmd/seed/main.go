// Seeds a development database with a demo tenant and a few customers,
// so a fresh checkout can submit a campaign right away.
package main

import (
	"log"
	"time"

	"wasender/internal/config"
	"wasender/internal/database"
	"wasender/internal/models"
)

func main() {
	cfg := config.LoadConfig()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}

	tenant := models.Tenant{
		TenantID: "demo",
		Name:     "Demo Tenant",
		Role:     models.RoleUser,
		Tier:     models.TierStandard,
		Credits:  100,
	}
	if err := db.Where("tenant_id = ?", tenant.TenantID).FirstOrCreate(&tenant).Error; err != nil {
		log.Fatalf("Failed to seed tenant: %v", err)
	}

	customers := []models.Customer{
		{TenantID: "demo", Phone: "5511999990001", Name: "Ana", Attributes: `{"city":"Sao Paulo","plan":"fiber"}`},
		{TenantID: "demo", Phone: "5511999990002", Name: "Bruno", Attributes: `{"city":"Rio","plan":"mobile"}`},
		{TenantID: "demo", Phone: "5511999990003", Name: "Clara", Attributes: `{"city":"Recife"}`},
	}
	for _, c := range customers {
		if err := db.Where("tenant_id = ? AND phone = ?", c.TenantID, c.Phone).FirstOrCreate(&c).Error; err != nil {
			log.Fatalf("Failed to seed customer %s: %v", c.Phone, err)
		}
	}

	batch := models.ScheduledBatch{
		TenantID: "demo",
		Selector: models.SelectorAll,
		Template: "Hi {name}, greetings from {city}!",
		DueAt:    time.Now().Add(2 * time.Minute),
		Status:   models.BatchPending,
	}
	if err := db.Create(&batch).Error; err != nil {
		log.Fatalf("Failed to seed scheduled batch: %v", err)
	}

	log.Println("Database seeding completed")
}
