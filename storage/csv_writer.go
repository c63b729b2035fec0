package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"cian-feed/models"
)

// CSVWriter dumps fetched listing rows to a CSV file for inspection,
// before any normalization touches them.
type CSVWriter struct {
	file   *os.File
	writer *csv.Writer
}

// NewCSVWriter creates (or truncates) the CSV file at the given path and
// writes the header row. Intermediate directories are created automatically.
func NewCSVWriter(path string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}

	w := csv.NewWriter(f)

	if err := w.Write([]string{
		"external_id", "status", "address", "rooms", "floor", "total_floors",
		"apartment_details", "house_details", "rental_conditions",
		"apartment_amenities", "main_photo_url", "photo_count",
		"promotion_type", "agent_id",
	}); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("csv: write header: %w", err)
	}
	w.Flush()

	return &CSVWriter{file: f, writer: w}, nil
}

// WriteListings appends one row per listing.
func (c *CSVWriter) WriteListings(listings []*models.ListingRecord) error {
	for _, r := range listings {
		row := []string{
			r.ExternalID.String(),
			r.Status.StringOr(""),
			r.Address.String(),
			strconv.Itoa(r.Rooms.Or(0)),
			strconv.Itoa(r.Floor.Or(0)),
			strconv.Itoa(r.TotalFloors.Or(0)),
			r.ApartmentDetails.String(),
			r.HouseDetails.String(),
			r.RentalConditions.String(),
			r.ApartmentAmenities.String(),
			r.MainPhotoURL.String(),
			strconv.Itoa(len(r.PhotosJSON.URLs())),
			r.PromotionType.String(),
			r.AgentID.String(),
		}
		if err := c.writer.Write(row); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	c.writer.Flush()
	return c.writer.Error()
}

// Close flushes and closes the underlying file.
func (c *CSVWriter) Close() error {
	c.writer.Flush()
	return c.file.Close()
}
