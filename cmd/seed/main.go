package main

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"equiherds/internal/database"
	"equiherds/internal/domain"
	"equiherds/internal/modules/subscription"
	"equiherds/internal/repository"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	db, err := database.Connect("equiherds.db")
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}

	log.Println("Running AutoMigrate...")
	if err := db.AutoMigrate(
		&domain.User{},
		&repository.ListingRecord{},
		&domain.Booking{},
		&subscription.Plan{},
		&subscription.Subscription{},
	); err != nil {
		log.Fatal("AutoMigrate failed:", err)
	}

	log.Println("Cleaning old data...")
	db.Exec("DELETE FROM bookings")
	db.Exec("DELETE FROM listings")
	db.Exec("DELETE FROM subscriptions")
	db.Exec("DELETE FROM subscription_plans")
	db.Exec("DELETE FROM users")

	// ================== USERS ==================
	log.Println("Creating users...")

	adminHash, _ := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	admin := domain.User{
		Email:        "admin@equiherds.com",
		PasswordHash: string(adminHash),
		Role:         domain.RoleAdmin,
		Name:         "Administrator",
	}
	db.Create(&admin)
	log.Println("Admin created: admin@equiherds.com / admin123")

	buyers := []domain.User{}
	for i, email := range []string{"maya@rider.com", "jonas@rider.com", "petra@rider.com"} {
		hash, _ := bcrypt.GenerateFromPassword([]byte("buyer123"), bcrypt.DefaultCost)
		buyer := domain.User{
			Email:        email,
			PasswordHash: string(hash),
			Role:         domain.RoleBuyer,
			Name:         fmt.Sprintf("Buyer %d", i+1),
			Phone:        fmt.Sprintf("+49 170 123 45%02d", i+10),
		}
		db.Create(&buyer)
		buyers = append(buyers, buyer)
	}

	sellers := []domain.User{}
	for i, email := range []string{"anke@northstable.com", "henrik@trakehner.com"} {
		hash, _ := bcrypt.GenerateFromPassword([]byte("seller123"), bcrypt.DefaultCost)
		seller := domain.User{
			Email:        email,
			PasswordHash: string(hash),
			Role:         domain.RoleSeller,
			Name:         fmt.Sprintf("Seller %d", i+1),
		}
		db.Create(&seller)
		sellers = append(sellers, seller)
	}

	// ================== PLANS ==================
	log.Println("Creating plans...")

	yearly := func(v float64) *float64 { return &v }
	plans := []subscription.Plan{
		{
			ID: subscription.PlanFree, Name: "Free",
			Description:    "Try the marketplace with a single listing per category",
			EquipmentLimit: "1", HorseLimit: "1", ServiceLimit: "1",
			StableLimit: "Not Allowed", TrainerLimit: "Not Allowed",
			IsActive: true,
		},
		{
			ID: subscription.PlanStarter, Name: "Starter",
			Description:  "For part-time sellers",
			PriceMonthly: 19, PriceYearly: yearly(190),
			EquipmentLimit: "5", HorseLimit: "3", ServiceLimit: "5",
			StableLimit: "2", TrainerLimit: "1",
			IsActive: true,
		},
		{
			ID: subscription.PlanPro, Name: "Pro",
			Description:  "Full catalog access, no caps",
			PriceMonthly: 49, PriceYearly: yearly(490),
			EquipmentLimit: "unlimited", HorseLimit: "unlimited", ServiceLimit: "unlimited",
			StableLimit: "unlimited", TrainerLimit: "unlimited",
			IsActive: true,
		},
	}
	for i := range plans {
		db.Create(&plans[i])
	}

	// first seller gets a starter subscription; second stays on the free tier
	db.Create(&subscription.Subscription{
		ID:            uuid.New().String(),
		SellerID:      sellers[0].ID,
		PlanID:        subscription.PlanStarter,
		Status:        subscription.StatusActive,
		BillingPeriod: subscription.BillingMonthly,
		StartedAt:     time.Now(),
		ExpiresAt:     sql.NullTime{Time: time.Now().AddDate(0, 1, 0), Valid: true},
		AutoRenew:     true,
	})

	// ================== LISTINGS ==================
	log.Println("Creating listings...")

	str := func(s string) *string { return &s }
	f64 := func(v float64) *float64 { return &v }

	listings := []repository.ListingRecord{
		{
			Category:        string(domain.CategoryService),
			Title:           str("Dressage lesson block"),
			SellerID:        sellers[0].ID,
			UnitPrice:       f64(50),
			DiscountPercent: f64(0),
			PerHourAddOns:   str(`{"video_analysis":15,"arena_rental":20}`),
			Owner:           str(`{"name":"Anke","email":"anke@northstable.com"}`),
		},
		{
			Category:        string(domain.CategoryEquipment),
			Title:           str("Show jump set"),
			SellerID:        sellers[0].ID,
			UnitPrice:       f64(30),
			DiscountPercent: f64(10),
			DeliveryCharge:  f64(25),
			Photos:          str(`["jumps-1.jpg","jumps-2.jpg"]`),
		},
		{
			Category:  string(domain.CategoryHorse),
			Title:     str("Trakehner gelding, 7yo"),
			SellerID:  sellers[1].ID,
			UnitPrice: f64(12000),
			Photos:    str(`["gelding.jpg"]`),
			Owner:     str(`{"name":"Henrik","email":"henrik@trakehner.com"}`),
		},
		{
			Category:        string(domain.CategoryStable),
			Title:           str("Full board box stall"),
			SellerID:        sellers[0].ID,
			UnitPrice:       f64(18),
			DiscountPercent: f64(5),
			Schedule:        str(`[{"day":"monday","start":"08:00","end":"18:00"}]`),
		},
	}
	for i := range listings {
		db.Create(&listings[i])
	}

	log.Printf("Seed complete: %d users, %d plans, %d listings", 1+len(buyers)+len(sellers), len(plans), len(listings))
}
