package main

import (
	"fmt"

	"geodir-backend/internal/config"
	"geodir-backend/internal/domain"
	"geodir-backend/internal/infrastructure/database"

	"gorm.io/gorm"
)

// Seed data: a small activity forest plus organizations with building,
// phones and activity links, inserted in one transaction.
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("config load: " + err.Error())
	}
	if cfg.DatabaseURL == "" {
		panic("DATABASE_URL (or POSTGRES_* parts) is required to seed")
	}

	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		panic("postgres open: " + err.Error())
	}
	if err := database.AutoMigrate(db); err != nil {
		panic("migrate: " + err.Error())
	}

	if err := db.Transaction(seed); err != nil {
		panic("seed: " + err.Error())
	}
	fmt.Println("Sample data inserted")
}

func seed(tx *gorm.DB) error {
	services := domain.Activity{Name: "Services"}
	food := domain.Activity{Name: "Food"}
	if err := tx.Create(&services).Error; err != nil {
		return err
	}
	if err := tx.Create(&food).Error; err != nil {
		return err
	}

	cleaning := domain.Activity{Name: "Cleaning", ParentID: &services.ID}
	catering := domain.Activity{Name: "Catering", ParentID: &services.ID}
	dairy := domain.Activity{Name: "Dairy", ParentID: &food.ID}
	if err := tx.Create(&[]*domain.Activity{&cleaning, &catering, &dairy}).Error; err != nil {
		return err
	}
	window := domain.Activity{Name: "Window Cleaning", ParentID: &cleaning.ID}
	if err := tx.Create(&window).Error; err != nil {
		return err
	}

	orgs := []struct {
		name       string
		address    string
		lat, lon   float64
		phones     []string
		activities []*domain.Activity
	}{
		{"Acme Cleaning Co", "1 Main St", 40.0000, -75.0000, []string{"2-222-222", "3-333-333"}, []*domain.Activity{&cleaning}},
		{"Crystal Windows", "5 Oak Ave", 40.0045, -75.0010, []string{"8-800-100"}, []*domain.Activity{&window}},
		{"City Catering", "12 Market Sq", 40.0300, -74.9500, []string{"8-800-200"}, []*domain.Activity{&catering, &food}},
		{"Fresh Dairy Ltd", "99 Farm Rd", 40.4500, -75.4000, []string{"8-800-300"}, []*domain.Activity{&dairy}},
	}

	for _, o := range orgs {
		building := domain.Building{Address: o.address, Latitude: o.lat, Longitude: o.lon}
		if err := tx.Create(&building).Error; err != nil {
			return err
		}
		org := domain.Organization{Name: o.name, BuildingID: &building.ID}
		for _, a := range o.activities {
			org.Activities = append(org.Activities, *a)
		}
		for _, num := range o.phones {
			org.Phones = append(org.Phones, domain.Phone{Number: num})
		}
		if err := tx.Create(&org).Error; err != nil {
			return err
		}
	}
	return nil
}
