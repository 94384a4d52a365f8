package helpers

import (
	"time"

	"skillswap_server/global"
	"skillswap_server/schemas"

	"github.com/gocql/gocql"
)

// Listing statuses
const (
	ListingActive   = "active"
	ListingInactive = "inactive"
)

// WriteListing inserts a listing into its three query tables
func WriteListing(listingID string, userID string, username string, skillOffered string, skillWanted string, category string, description string, status string, created time.Time) error {

	for _, stmt := range []string{`
		INSERT INTO listings (listing_id,user_id,username,skill_offered,skill_wanted,category,description,status,created)
		VALUES(?,?,?,?,?,?,?,?,?);`, `
		INSERT INTO listings_by_user (listing_id,user_id,username,skill_offered,skill_wanted,category,description,status,created)
		VALUES(?,?,?,?,?,?,?,?,?);`, `
		INSERT INTO listings_by_status (listing_id,user_id,username,skill_offered,skill_wanted,category,description,status,created)
		VALUES(?,?,?,?,?,?,?,?,?);`,
	} {
		err := global.Session.Query(stmt,
			listingID,
			userID,
			username,
			skillOffered,
			skillWanted,
			category,
			description,
			status,
			created,
		).WithContext(global.Context).Exec()
		if err != nil {
			return err
		}
	}

	return nil
}

// GetListing reads one listing by id
func GetListing(listingID string) (schemas.ListingSchema, error) {

	listing := schemas.ListingSchema{}
	row := make(map[string]interface{})

	err := global.Session.Query(`
		SELECT * FROM listings WHERE listing_id = ? LIMIT 1;`,
		listingID,
	).WithContext(global.Context).MapScan(row)

	if err != nil {
		return listing, err
	}

	if id, ok := row["listing_id"].(gocql.UUID); ok {
		listing.ListingID = id.String()
	}
	listing.UserID, _ = row["user_id"].(string)
	listing.Username, _ = row["username"].(string)
	listing.SkillOffered, _ = row["skill_offered"].(string)
	listing.SkillWanted, _ = row["skill_wanted"].(string)
	listing.Category, _ = row["category"].(string)
	listing.Description, _ = row["description"].(string)
	listing.Status, _ = row["status"].(string)
	if created, ok := row["created"].(time.Time); ok {
		listing.Created = created.UnixMilli()
	}

	return listing, nil
}

// DeleteListingRows removes a listing from its three query tables
func DeleteListingRows(listingID string, userID string, status string, created time.Time) error {

	if err := global.Session.Query(`
		DELETE FROM listings WHERE listing_id = ?;`,
		listingID,
	).WithContext(global.Context).Exec(); err != nil {
		return err
	}

	if err := global.Session.Query(`
		DELETE FROM listings_by_user WHERE user_id = ? AND created = ?;`,
		userID,
		created,
	).WithContext(global.Context).Exec(); err != nil {
		return err
	}

	return global.Session.Query(`
		DELETE FROM listings_by_status WHERE status = ? AND created = ?;`,
		status,
		created,
	).WithContext(global.Context).Exec()
}
