package seed

import (
	"context"
	"fmt"
	"io"
	"strings"

	"barangay/pkg/types"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

type Directory interface {
	Hotlines() []types.Hotline
	Officials() []types.Official
}

type RecordCreator interface {
	Create(ctx context.Context, record types.Record) (types.Record, error)
}

type Hotline struct {
	ServiceName    string `yaml:"service_name"`
	PhoneNumber    string `yaml:"phone_number"`
	Description    string `yaml:"description"`
	AvailableHours string `yaml:"available_hours"`
}

// Directory entries created by SeedDirectory. Officials are created for each
// position with a placeholder name an admin fills in later.
type Defaults struct {
	Hotlines  []Hotline `yaml:"hotlines"`
	Positions []string  `yaml:"positions"`
}

// DefaultDirectory holds the national hotlines every barangay lists and the
// positions of the barangay council.
var DefaultDirectory = Defaults{
	Hotlines: []Hotline{
		{
			ServiceName:    "National Emergency Hotline",
			PhoneNumber:    "911",
			Description:    "Police, fire and medical emergencies",
			AvailableHours: "24/7",
		},
		{
			ServiceName:    "Philippine Red Cross",
			PhoneNumber:    "143",
			Description:    "Ambulance, blood services and disaster response",
			AvailableHours: "24/7",
		},
		{
			ServiceName:    "Bureau of Fire Protection",
			PhoneNumber:    "(02) 8426-0219",
			Description:    "Fire incidents and rescue",
			AvailableHours: "24/7",
		},
		{
			ServiceName:    "NDRRMC Operations Center",
			PhoneNumber:    "(02) 8911-1406",
			Description:    "Disaster risk reduction and management",
			AvailableHours: "24/7",
		},
	},
	Positions: []string{
		"Punong Barangay",
		"Barangay Kagawad",
		"SK Chairperson",
		"Barangay Secretary",
		"Barangay Treasurer",
	},
}

// LoadDefaults reads directory defaults from YAML.
func LoadDefaults(r io.Reader) (Defaults, error) {
	var d Defaults
	if err := yaml.NewDecoder(r).Decode(&d); err != nil {
		return Defaults{}, fmt.Errorf("failed to decode seed file: %w", err)
	}
	return d, nil
}

const vacant = "Vacant"

type Result struct {
	Created int
	Skipped int
}

// SeedDirectory creates the default hotlines and council positions that are
// not already present. Hotlines are matched on service name and officials on
// position, both case-insensitively, so running it twice creates nothing.
func SeedDirectory(ctx context.Context, dir Directory, records RecordCreator, defaults Defaults, logger *logrus.Logger) (Result, error) {
	var result Result

	existingHotlines := make(map[string]bool)
	for _, h := range dir.Hotlines() {
		existingHotlines[normalize(h.ServiceName)] = true
	}

	for _, h := range defaults.Hotlines {
		if existingHotlines[normalize(h.ServiceName)] {
			logger.WithField("service_name", h.ServiceName).Debug("hotline exists, skipping")
			result.Skipped++
			continue
		}

		created, err := records.Create(ctx, &types.Hotline{
			ServiceName:    h.ServiceName,
			PhoneNumber:    h.PhoneNumber,
			Description:    h.Description,
			AvailableHours: h.AvailableHours,
		})
		if created == nil {
			return result, fmt.Errorf("failed to seed hotline %s: %w", h.ServiceName, err)
		}
		if err != nil {
			logger.WithError(err).Warn("hotline seeded but reload failed")
		}
		logger.WithField("service_name", h.ServiceName).Info("hotline seeded")
		result.Created++
	}

	existingPositions := make(map[string]bool)
	for _, o := range dir.Officials() {
		existingPositions[normalize(o.Position)] = true
	}

	for _, position := range defaults.Positions {
		if existingPositions[normalize(position)] {
			logger.WithField("position", position).Debug("official exists, skipping")
			result.Skipped++
			continue
		}

		created, err := records.Create(ctx, &types.Official{Name: vacant, Position: position})
		if created == nil {
			return result, fmt.Errorf("failed to seed official %s: %w", position, err)
		}
		if err != nil {
			logger.WithError(err).Warn("official seeded but reload failed")
		}
		logger.WithField("position", position).Info("official seeded")
		result.Created++
	}

	return result, nil
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
