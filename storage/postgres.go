package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"cian-feed/models"
)

// PostgresSource reads listing and agent rows straight from Postgres.
// Supabase projects expose the same database over a DSN, so this source
// is interchangeable with the REST one.
type PostgresSource struct {
	db *sql.DB
}

// NewPostgresSource opens a connection and verifies it with retried pings.
func NewPostgresSource(dsn string) (*PostgresSource, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 10; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	return &PostgresSource{db: db}, nil
}

const listingColumns = `
	id, external_id, status, address, description,
	rooms, beds_count, floor, total_floors,
	apartment_details, house_details, rental_conditions, apartment_amenities,
	total_area, living_area, kitchen_area,
	room_type, windows_view, separate_wcs, combined_wcs,
	loggias_count, balcony_count, year_built,
	main_photo_url, photos_json, promotion_type, auction_bet, is_apartments,
	phone, phones, email, contact_name, agent_id,
	subagent_first_name, subagent_last_name, subagent_email,
	subagent_phone, subagent_avatar_url,
	building_name, complex_id, complex_name, house_id, house_name,
	flat_number, section_number,
	has_internet, has_furniture, has_room_furniture, has_kitchen_furniture,
	has_tv, has_washer, has_conditioner, has_bathtub, has_shower,
	has_dishwasher, has_fridge, pets_allowed, children_allowed`

// FetchListings returns all rows of the objects table ordered by id.
func (p *PostgresSource) FetchListings(ctx context.Context) ([]*models.ListingRecord, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT `+listingColumns+` FROM objects ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("postgres: fetch objects: %w", err)
	}
	defer rows.Close()

	var listings []*models.ListingRecord
	for rows.Next() {
		r := &models.ListingRecord{}
		if err := rows.Scan(
			&r.ID, &r.ExternalID, &r.Status, &r.Address, &r.Description,
			&r.Rooms, &r.BedsCount, &r.Floor, &r.TotalFloors,
			&r.ApartmentDetails, &r.HouseDetails, &r.RentalConditions, &r.ApartmentAmenities,
			&r.TotalArea, &r.LivingArea, &r.KitchenArea,
			&r.RoomType, &r.WindowsView, &r.SeparateWcs, &r.CombinedWcs,
			&r.Loggias, &r.Balconies, &r.YearBuilt,
			&r.MainPhotoURL, &r.PhotosJSON, &r.PromotionType, &r.AuctionBet, &r.IsApartments,
			&r.Phone, &r.Phones, &r.Email, &r.ContactName, &r.AgentID,
			&r.SubAgentFirstName, &r.SubAgentLastName, &r.SubAgentEmail,
			&r.SubAgentPhone, &r.SubAgentAvatarURL,
			&r.BuildingName, &r.ComplexID, &r.ComplexName, &r.HouseID, &r.HouseName,
			&r.FlatNumber, &r.SectionNumber,
			&r.HasInternet, &r.HasFurniture, &r.HasRoomFurniture, &r.HasKitchenFurniture,
			&r.HasTv, &r.HasWasher, &r.HasConditioner, &r.HasBathtub, &r.HasShower,
			&r.HasDishwasher, &r.HasFridge, &r.PetsAllowed, &r.ChildrenAllowed,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan object row: %w", err)
		}
		listings = append(listings, r)
	}
	return listings, rows.Err()
}

// FetchAgents returns agent rows for the given id set, keyed by id.
func (p *PostgresSource) FetchAgents(ctx context.Context, ids []string) (map[string]*models.AgentRecord, error) {
	agents := make(map[string]*models.AgentRecord)
	if len(ids) == 0 {
		return agents, nil
	}

	rows, err := p.db.QueryContext(ctx, `
		SELECT id, name, first_name, last_name, surname, phone, email, avatar_url
		FROM agents
		WHERE id::text = ANY($1)
	`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("postgres: fetch agents: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		a := &models.AgentRecord{}
		if err := rows.Scan(
			&a.ID, &a.Name, &a.FirstName, &a.LastName, &a.Surname,
			&a.Phone, &a.Email, &a.AvatarURL,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan agent row: %w", err)
		}
		if id := a.ID.String(); id != "" {
			agents[id] = a
		}
	}
	return agents, rows.Err()
}

// CountListings returns the number of rows in the objects table.
func (p *PostgresSource) CountListings(ctx context.Context) (int, error) {
	var count int
	if err := p.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM objects`).Scan(&count); err != nil {
		return 0, fmt.Errorf("postgres: count objects: %w", err)
	}
	return count, nil
}

func (p *PostgresSource) Close() error {
	return p.db.Close()
}
