// Command seed wipes and repopulates the database with demo data: an
// administrator, a customer, three rooms and two confirmed bookings.
// Intended for development environments only.
package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/lodgio/room-booking/internal/config"
	"github.com/lodgio/room-booking/internal/database"
	"github.com/lodgio/room-booking/internal/model"
	"github.com/lodgio/room-booking/internal/repository"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database open failed: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Clear old data. Bookings first so FK constraints hold.
	for _, table := range []string{"bookings", "refresh_tokens", "rooms", "users"} {
		if _, err := db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			log.Fatalf("clear %s failed: %v", table, err)
		}
	}

	users := repository.NewUserRepo(db)
	rooms := repository.NewRoomRepo(db)

	customerID, err := users.Create(ctx, "Nguyen Van A", "nguyenvana@example.com", "password123", model.RoleCustomer, cfg.BcryptCost)
	if err != nil {
		log.Fatalf("seed customer failed: %v", err)
	}
	if _, err := users.Create(ctx, "Admin User", "admin@example.com", "admin123", model.RoleAdmin, cfg.BcryptCost); err != nil {
		log.Fatalf("seed admin failed: %v", err)
	}

	seedRooms := []model.Room{
		{Name: "Deluxe Room", Description: "Spacious room with a king bed", PricePerNight: 100, Capacity: 2},
		{Name: "Standard Room", Description: "Comfortable standard room", PricePerNight: 50, Capacity: 2},
		{Name: "Family Room", Description: "Large room for families", PricePerNight: 150, Capacity: 4},
	}
	for i := range seedRooms {
		if err := rooms.Create(ctx, &seedRooms[i]); err != nil {
			log.Fatalf("seed room %q failed: %v", seedRooms[i].Name, err)
		}
	}

	// Two confirmed bookings on the first two rooms. Each booked room is
	// flipped unavailable to keep the availability flag consistent with
	// the presence of a confirmed booking.
	seedBookings := []struct {
		room              model.Room
		checkIn, checkOut string
	}{
		{seedRooms[0], "2025-10-01", "2025-10-03"},
		{seedRooms[1], "2025-10-05", "2025-10-07"},
	}
	for _, sb := range seedBookings {
		checkIn, _ := time.Parse("2006-01-02", sb.checkIn)
		checkOut, _ := time.Parse("2006-01-02", sb.checkOut)
		total := float64(model.Nights(checkIn, checkOut)) * sb.room.PricePerNight
		if _, err := db.ExecContext(ctx,
			"INSERT INTO bookings (user_id, room_id, check_in, check_out, total_price, status) VALUES (?,?,?,?,?,?)",
			customerID, sb.room.ID, checkIn, checkOut, total, model.StatusConfirmed); err != nil {
			log.Fatalf("seed booking failed: %v", err)
		}
		if _, err := db.ExecContext(ctx, "UPDATE rooms SET available = FALSE WHERE id = ?", sb.room.ID); err != nil {
			log.Fatalf("seed room availability failed: %v", err)
		}
	}

	log.Println("database seeded successfully")
}
