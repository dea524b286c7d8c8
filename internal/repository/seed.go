package repository

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/senyabanana/repair-quotes/internal/models"

	"gopkg.in/yaml.v3"
)

// workshopSeed - запись YAML-файла с мастерскими.
type workshopSeed struct {
	ID          string              `yaml:"id"`
	Name        string              `yaml:"name"`
	Coordinates *models.Coordinates `yaml:"coordinates"`
	Hours       []struct {
		Weekday string `yaml:"weekday"`
		Open    string `yaml:"open"`
		Close   string `yaml:"close"`
	} `yaml:"hours"`
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// LoadWorkshops читает справочник мастерских из YAML-файла.
func LoadWorkshops(path string) ([]models.Workshop, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read workshops file: %w", err)
	}

	var seeds []workshopSeed
	if err := yaml.Unmarshal(raw, &seeds); err != nil {
		return nil, fmt.Errorf("parse workshops file: %w", err)
	}

	workshops := make([]models.Workshop, 0, len(seeds))
	for _, seed := range seeds {
		if seed.ID == "" || seed.Name == "" {
			return nil, fmt.Errorf("workshop entry requires id and name")
		}
		w := models.Workshop{ID: seed.ID, Name: seed.Name, Coordinates: seed.Coordinates}
		for _, h := range seed.Hours {
			day, ok := weekdays[strings.ToLower(h.Weekday)]
			if !ok {
				return nil, fmt.Errorf("workshop %s: unknown weekday %q", seed.ID, h.Weekday)
			}
			open, err := models.ParseClockTime(h.Open)
			if err != nil {
				return nil, fmt.Errorf("workshop %s: %w", seed.ID, err)
			}
			closing, err := models.ParseClockTime(h.Close)
			if err != nil {
				return nil, fmt.Errorf("workshop %s: %w", seed.ID, err)
			}
			if closing <= open {
				return nil, fmt.Errorf("workshop %s: %s closes before it opens", seed.ID, h.Weekday)
			}
			w.Hours = append(w.Hours, models.OperatingHours{Weekday: day, Open: open, Close: closing})
		}
		workshops = append(workshops, w)
	}
	return workshops, nil
}

// SeedWorkshops сохраняет справочник мастерских в репозиторий.
func SeedWorkshops(ctx context.Context, repo WorkshopRepository, workshops []models.Workshop) error {
	for i := range workshops {
		if err := repo.SaveWorkshop(ctx, &workshops[i]); err != nil {
			return fmt.Errorf("save workshop %s: %w", workshops[i].ID, err)
		}
	}
	return nil
}
