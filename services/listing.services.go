package services

import (
	"time"

	"skillswap_server/errors"
	"skillswap_server/global"
	"skillswap_server/helpers"
	"skillswap_server/schemas"

	"github.com/gocql/gocql"
	"github.com/gofiber/fiber/v2"
)

// BrowseListings pages active listings newest first, optionally narrowed to a
// category. The caller's own listings are filtered out of the browse view.
func BrowseListings(c *fiber.Ctx) error {

	userID := c.Locals("userid").(string)
	category := c.Query("category")

	iter := global.Session.Query(`
		SELECT * FROM listings_by_status WHERE status = ? LIMIT 100;`,
		helpers.ListingActive,
	).WithContext(global.Context).Iter()

	defer iter.Close()

	listings := []schemas.ListingSchema{}
	for {
		row := make(map[string]interface{})
		if !iter.MapScan(row) {
			break
		}

		listing := listingFromRow(row)
		if listing.UserID == userID {
			continue
		}
		if category != "" && listing.Category != category {
			continue
		}
		listings = append(listings, listing)
	}

	return c.JSON(listings)
}

// GetMyListings returns the caller's listings newest first, any status
func GetMyListings(c *fiber.Ctx) error {

	userID := c.Locals("userid").(string)

	iter := global.Session.Query(`
		SELECT * FROM listings_by_user WHERE user_id = ?;`,
		userID,
	).WithContext(global.Context).Iter()

	defer iter.Close()

	listings := []schemas.ListingSchema{}
	for {
		row := make(map[string]interface{})
		if !iter.MapScan(row) {
			break
		}
		listings = append(listings, listingFromRow(row))
	}

	return c.JSON(listings)
}

// CreateListing creates a listing in all three query tables
func CreateListing(c *fiber.Ctx) error {

	userID := c.Locals("userid").(string)
	username := c.Locals("username").(string)

	req := new(schemas.CreateListingSchema)

	if err := c.BodyParser(req); err != nil {
		return errors.HandleBadJsonError(c)
	}

	if err := global.Validator.Struct(req); err != nil {
		return errors.HandleValidatorError(c, err)
	}

	listingID := gocql.TimeUUID()
	created := listingID.Time().UTC()

	if err := helpers.WriteListing(listingID.String(), userID, username, req.SkillOffered, req.SkillWanted, req.Category, req.Description, helpers.ListingActive, created); err != nil {
		return errors.HandleInternalError(c, "listings", "ScyllaDB: "+err.Error())
	}

	return c.JSON(schemas.ListingSchema{
		ListingID:    listingID.String(),
		UserID:       userID,
		Username:     username,
		SkillOffered: req.SkillOffered,
		SkillWanted:  req.SkillWanted,
		Category:     req.Category,
		Description:  req.Description,
		Status:       helpers.ListingActive,
		Created:      created.UnixMilli(),
	})
}

// UpdateListing toggles a listing between active and inactive
func UpdateListing(c *fiber.Ctx) error {

	userID := c.Locals("userid").(string)
	username := c.Locals("username").(string)
	listingID := c.Params("listingID")

	req := new(schemas.UpdateListingSchema)

	if err := c.BodyParser(req); err != nil {
		return errors.HandleBadJsonError(c)
	}

	if err := global.Validator.Struct(req); err != nil {
		return errors.HandleValidatorError(c, err)
	}

	listing, err := helpers.GetListing(listingID)
	if err != nil {
		if err == gocql.ErrNotFound {
			return errors.HandleBadRequestError(c, "ListingID", "invalid")
		}
		return errors.HandleInternalError(c, "listings", "ScyllaDB: "+err.Error())
	}

	if listing.UserID != userID {
		return errors.HandleBadRequestError(c, "ListingID", "not owner")
	}

	if listing.Status == req.Status {
		return helpers.OKResponse(c)
	}

	// the status partition changes, so move the row rather than update it
	if err = helpers.DeleteListingRows(listingID, userID, listing.Status, helpers.MilisecondsToTime(listing.Created)); err != nil {
		return errors.HandleInternalError(c, "listings", "ScyllaDB: "+err.Error())
	}

	if err = helpers.WriteListing(listingID, userID, username, listing.SkillOffered, listing.SkillWanted, listing.Category, listing.Description, req.Status, helpers.MilisecondsToTime(listing.Created)); err != nil {
		return errors.HandleInternalError(c, "listings", "ScyllaDB: "+err.Error())
	}

	return helpers.OKResponse(c)
}

// DeleteListing removes a listing the caller owns
func DeleteListing(c *fiber.Ctx) error {

	userID := c.Locals("userid").(string)
	listingID := c.Params("listingID")

	listing, err := helpers.GetListing(listingID)
	if err != nil {
		if err == gocql.ErrNotFound {
			return errors.HandleBadRequestError(c, "ListingID", "invalid")
		}
		return errors.HandleInternalError(c, "listings", "ScyllaDB: "+err.Error())
	}

	if listing.UserID != userID {
		return errors.HandleBadRequestError(c, "ListingID", "not owner")
	}

	if err = helpers.DeleteListingRows(listingID, userID, listing.Status, helpers.MilisecondsToTime(listing.Created)); err != nil {
		return errors.HandleInternalError(c, "listings", "ScyllaDB: "+err.Error())
	}

	return helpers.OKResponse(c)
}

func listingFromRow(row map[string]interface{}) schemas.ListingSchema {

	listing := schemas.ListingSchema{}

	if listingID, ok := row["listing_id"].(gocql.UUID); ok {
		listing.ListingID = listingID.String()
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

	return listing
}
