package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"tickethub/internal/events"
	"tickethub/internal/shared/config"
	"tickethub/internal/shared/database"
	"tickethub/internal/tickettypes"
	"tickethub/internal/users"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

type Seeder struct {
	db *database.DB
}

func main() {
	fmt.Println("🌱 Starting TicketHub Database Seeder...")

	cfg := config.Load()

	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	seeder := &Seeder{db: db}

	fmt.Println("\n🧹 Cleaning database...")
	if err := seeder.CleanDatabase(); err != nil {
		log.Fatalf("Failed to clean database: %v", err)
	}
	fmt.Println("✅ Database cleaned successfully")

	fmt.Println("\n🌱 Seeding database...")
	if err := seeder.SeedAll(); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}
	fmt.Println("✅ Database seeded successfully")

	fmt.Println("\n🎉 Seeding completed! Database is ready for testing.")
}

// CleanDatabase truncates all tables in reverse dependency order.
func (s *Seeder) CleanDatabase() error {
	tables := []string{
		"refunds",
		"payments",
		"tickets",
		"orders",
		"ticket_types",
		"events",
		"users",
	}

	tx := s.db.PostgreSQL.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Exec("SET CONSTRAINTS ALL DEFERRED").Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to defer constraints: %w", err)
	}

	for _, table := range tables {
		fmt.Printf("  Truncating table: %s\n", table)
		if err := tx.Exec(fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", table)).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	if err := tx.Exec("SET CONSTRAINTS ALL IMMEDIATE").Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to restore constraints: %w", err)
	}

	return tx.Commit().Error
}

func (s *Seeder) SeedAll() error {
	ctx := context.Background()

	userIDs, err := s.SeedUsers()
	if err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}

	eventIDs, err := s.SeedEvents(userIDs["admin"])
	if err != nil {
		return fmt.Errorf("failed to seed events: %w", err)
	}

	if err := s.SeedTicketTypes(eventIDs); err != nil {
		return fmt.Errorf("failed to seed ticket types: %w", err)
	}

	if s.db.Redis != nil {
		if err := s.db.Redis.FlushDB(ctx).Err(); err != nil {
			log.Printf("Warning: Failed to clear Redis cache: %v", err)
		}
	}

	return nil
}

// SeedUsers creates 1 admin and 2 regular buyers, all with password "qwerty".
func (s *Seeder) SeedUsers() (map[string]uuid.UUID, error) {
	fmt.Println("  👤 Seeding users...")

	userIDs := make(map[string]uuid.UUID)

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("qwerty"), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	usersData := []struct {
		key       string
		firstName string
		lastName  string
		email     string
		role      users.Role
	}{
		{"admin", "Admin", "User", "admin@tickethub.io", users.RoleAdmin},
		{"buyer1", "Ada", "Lovelace", "ada@example.com", users.RoleUser},
		{"buyer2", "Alan", "Turing", "alan@example.com", users.RoleUser},
	}

	for _, userData := range usersData {
		user := users.User{
			ID:        uuid.New(),
			FirstName: userData.firstName,
			LastName:  userData.lastName,
			Email:     userData.email,
			Password:  string(hashedPassword),
			Role:      userData.role,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}

		if err := s.db.PostgreSQL.Create(&user).Error; err != nil {
			return nil, fmt.Errorf("failed to create user %s: %w", userData.email, err)
		}

		userIDs[userData.key] = user.ID
		fmt.Printf("    ✅ Created user: %s (%s)\n", user.Email, user.Role)
	}

	return userIDs, nil
}

// SeedEvents creates a mix of published, draft, and near-term events.
func (s *Seeder) SeedEvents(adminID uuid.UUID) (map[string]uuid.UUID, error) {
	fmt.Println("  🎫 Seeding events...")

	eventIDs := make(map[string]uuid.UUID)

	eventsData := []struct {
		key         string
		name        string
		description string
		venue       string
		startsIn    time.Duration
		status      events.EventStatus
	}{
		{"concert", "Midnight Synth Live", "An evening of synthwave and analog machines", "Velvet Hall", 30 * 24 * time.Hour, events.EventStatusPublished},
		{"conference", "GopherConf 2026", "Two days of talks on building reliable systems", "Harbor Convention Center", 60 * 24 * time.Hour, events.EventStatusPublished},
		{"soon", "Warehouse Pop-Up Show", "Limited capacity, almost sold out", "Dock 9", 48 * time.Hour, events.EventStatusPublished},
		{"draft", "Unannounced Festival", "Still being planned", "TBD", 90 * 24 * time.Hour, events.EventStatusDraft},
	}

	for _, eventData := range eventsData {
		startsAt := time.Now().Add(eventData.startsIn)
		endsAt := startsAt.Add(4 * time.Hour)
		event := events.Event{
			ID:          uuid.New(),
			Name:        eventData.name,
			Description: eventData.description,
			Venue:       eventData.venue,
			StartsAt:    startsAt,
			EndsAt:      &endsAt,
			Status:      eventData.status,
			CreatedBy:   adminID,
		}

		if err := s.db.PostgreSQL.Create(&event).Error; err != nil {
			return nil, fmt.Errorf("failed to create event %s: %w", eventData.name, err)
		}

		eventIDs[eventData.key] = event.ID
		fmt.Printf("    ✅ Created event: %s (%s)\n", event.Name, event.Status)
	}

	return eventIDs, nil
}

// SeedTicketTypes attaches priced inventory to the seeded events. The
// pop-up show gets a tiny quantity so oversell behavior is easy to poke at.
func (s *Seeder) SeedTicketTypes(eventIDs map[string]uuid.UUID) error {
	fmt.Println("  💵 Seeding ticket types...")

	now := time.Now()
	saleOpens := now.Add(-24 * time.Hour)
	earlyBirdCloses := now.Add(7 * 24 * time.Hour)

	typesData := []struct {
		eventKey    string
		name        string
		description string
		price       string
		quantity    int
		maxPerOrder int
		saleStarts  *time.Time
		saleEnds    *time.Time
	}{
		{"concert", "General Admission", "Standing room", "45.00", 500, 10, &saleOpens, nil},
		{"concert", "VIP", "Front section with lounge access", "120.00", 50, 4, &saleOpens, nil},
		{"conference", "Early Bird", "Discounted full pass", "199.00", 200, 5, &saleOpens, &earlyBirdCloses},
		{"conference", "Standard", "Full conference pass", "299.00", 800, 5, &saleOpens, nil},
		{"soon", "Door List", "Last remaining spots", "25.00", 5, 2, &saleOpens, nil},
	}

	for _, typeData := range typesData {
		price, err := decimal.NewFromString(typeData.price)
		if err != nil {
			return fmt.Errorf("invalid price %q: %w", typeData.price, err)
		}

		ticketType := tickettypes.TicketType{
			ID:            uuid.New(),
			EventID:       eventIDs[typeData.eventKey],
			Name:          typeData.name,
			Description:   typeData.description,
			Price:         price,
			Currency:      "USD",
			QuantityTotal: typeData.quantity,
			MinPerOrder:   1,
			MaxPerOrder:   typeData.maxPerOrder,
			SaleStartsAt:  typeData.saleStarts,
			SaleEndsAt:    typeData.saleEnds,
			IsActive:      true,
		}

		if err := s.db.PostgreSQL.Create(&ticketType).Error; err != nil {
			return fmt.Errorf("failed to create ticket type %s: %w", typeData.name, err)
		}

		fmt.Printf("    ✅ Created ticket type: %s / %s ($%s, qty %d)\n",
			typeData.eventKey, ticketType.Name, typeData.price, typeData.quantity)
	}

	return nil
}
