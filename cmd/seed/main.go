package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Swarajhere/Healthcare-Appointment-System-sub000/internal/db"
	"github.com/Swarajhere/Healthcare-Appointment-System-sub000/internal/schedule"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("seed starting")

	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		log.Fatal("POSTGRES_DSN is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, dsn)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	gofakeit.Seed(time.Now().UnixNano())

	if err := seedDoctors(context.Background(), pool, 50); err != nil {
		log.Fatalf("seed doctors: %v", err)
	}
	if err := seedPatients(context.Background(), pool, 2000); err != nil {
		log.Fatalf("seed patients: %v", err)
	}

	log.Println("seed complete")
}

func seedDoctors(ctx context.Context, pool *pgxpool.Pool, count int) error {
	log.Printf("seeding %d doctors", count)

	specialties := []string{
		"Dermatology",
		"Cardiology",
		"General Practice",
		"Orthopedics",
		"Endocrinology",
		"Neurology",
		"Pediatrics",
		"Psychiatry",
		"Ophthalmology",
		"ENT",
	}

	for i := 0; i < count; i++ {
		id := uuid.New()
		specialty := specialties[gofakeit.Number(0, len(specialties)-1)]
		email := gofakeit.Email()

		// Most seeded doctors are bookable, a few are pending approval
		// or deactivated so the gating paths have data.
		approved := gofakeit.Number(0, 9) > 0
		active := gofakeit.Number(0, 9) > 0

		_, err := pool.Exec(ctx, `
			INSERT INTO doctors (id, name, specialty, email, approved, active, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, now(), now())
		`, id, "Dr. "+gofakeit.Name(), specialty, email, approved, active)
		if err != nil {
			return err
		}

		if err := seedAvailability(ctx, pool, id); err != nil {
			return err
		}
	}

	return nil
}

func seedAvailability(ctx context.Context, pool *pgxpool.Pool, doctorID uuid.UUID) error {
	// Roughly a third of doctors rely on the implicit default hours.
	if gofakeit.Number(0, 2) == 0 {
		return nil
	}

	startHour := gofakeit.Number(8, 11)
	endHour := gofakeit.Number(startHour+3, 18)

	var custom []schedule.DateHours
	if gofakeit.Bool() {
		date := time.Now().AddDate(0, 0, gofakeit.Number(1, 14)).Format("2006-01-02")
		custom = append(custom, schedule.DateHours{
			Date:  date,
			Start: schedule.TimeOfDay{Hour: 13},
			End:   schedule.TimeOfDay{Hour: 17},
		})
	}

	customJSON, err := json.Marshal(custom)
	if err != nil {
		return err
	}

	_, err = pool.Exec(ctx, `
		INSERT INTO doctor_availability (doctor_id, default_start, default_end, custom_hours, blackouts, updated_at)
		VALUES ($1, $2, $3, $4, '[]'::jsonb, now())
	`, doctorID,
		schedule.TimeOfDay{Hour: startHour}.String(),
		schedule.TimeOfDay{Hour: endHour}.String(),
		customJSON)
	return err
}

func seedPatients(ctx context.Context, pool *pgxpool.Pool, count int) error {
	log.Printf("seeding %d patients", count)

	for i := 0; i < count; i++ {
		_, err := pool.Exec(ctx, `
			INSERT INTO patients (id, name, email, created_at, updated_at)
			VALUES ($1, $2, $3, now(), now())
		`, uuid.New(), gofakeit.Name(), gofakeit.Email())
		if err != nil {
			return err
		}
	}

	return nil
}
