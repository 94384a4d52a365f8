package services

import (
	"time"

	"skillswap_server/errors"
	"skillswap_server/events"
	"skillswap_server/global"
	"skillswap_server/helpers"
	"skillswap_server/metrics"
	"skillswap_server/schemas"

	"github.com/gocql/gocql"
	"github.com/gofiber/fiber/v2"
)

// ProposeExchange opens a swap request against a listing. The proposal costs
// one credit; the duplicate guard row is claimed before the debit so a repeat
// proposal can never charge twice.
func ProposeExchange(c *fiber.Ctx) error {

	userID := c.Locals("userid").(string)

	req := new(schemas.ProposeExchangeSchema)

	if err := c.BodyParser(req); err != nil {
		return errors.HandleBadJsonError(c)
	}

	if err := global.Validator.Struct(req); err != nil {
		return errors.HandleValidatorError(c, err)
	}

	listing, err := helpers.GetListing(req.ListingID)
	if err != nil {
		if err == gocql.ErrNotFound {
			return errors.HandleBadRequestError(c, "ListingID", "invalid")
		}
		return errors.HandleInternalError(c, "listings", "ScyllaDB: "+err.Error())
	}

	if listing.Status != helpers.ListingActive {
		return errors.HandleInvalidRequestError(c, "Listing", "inactive")
	}

	// a user cannot swap with themselves; rejected before any write
	if listing.UserID == userID {
		return errors.HandleInvalidRequestError(c, "Listing", "own listing")
	}

	exchangeID := gocql.TimeUUID()

	applied, err := global.Session.Query(`
		INSERT INTO exchanges_by_listing (listing_id,requester_id,exchange_id)
		VALUES(?,?,?)
		IF NOT EXISTS;`,
		req.ListingID,
		userID,
		exchangeID,
	).WithContext(global.Context).MapScanCAS(make(map[string]interface{}))

	if err != nil {
		return errors.HandleInternalError(c, "exchanges_by_listing", "ScyllaDB: "+err.Error())
	}
	if !applied {
		return errors.HandleInvalidRequestError(c, "Exchange", "already requested")
	}

	_, debited, err := helpers.ApplyLedger(userID, helpers.ProposeOpKey(exchangeID.String()), -helpers.ProposalCostMinor)
	if err != nil || !debited {
		global.Session.Query(`
			DELETE FROM exchanges_by_listing WHERE listing_id = ? AND requester_id = ?;`,
			req.ListingID,
			userID,
		).WithContext(global.Context).Exec()

		if err == helpers.ErrInsufficientCredits {
			return errors.HandleInvalidRequestError(c, "Credits", "insufficient")
		}
		return errors.HandleInternalError(c, "ledger", "propose debit failed")
	}

	created := exchangeID.Time().UTC()

	err = global.Session.Query(`
		INSERT INTO exchanges (exchange_id,listing_id,requester_id,provider_id,status,completed_sessions,total_sessions,rating,skill_offered,created)
		VALUES(?,?,?,?,?,?,?,?,?,?);`,
		exchangeID,
		req.ListingID,
		userID,
		listing.UserID,
		helpers.ExchangePending,
		0,
		helpers.DefaultTotalSessions,
		0,
		listing.SkillOffered,
		created,
	).WithContext(global.Context).Exec()

	if err != nil {
		abortPropose(req.ListingID, userID, exchangeID.String())
		return errors.HandleInternalError(c, "exchanges", "ScyllaDB: "+err.Error())
	}

	if err = writeExchangeByUserRows(exchangeID.String(), req.ListingID, userID, listing.UserID, listing.SkillOffered, created); err != nil {
		global.Session.Query(`
			DELETE FROM exchanges WHERE exchange_id = ?;`,
			exchangeID,
		).WithContext(global.Context).Exec()
		abortPropose(req.ListingID, userID, exchangeID.String())
		return errors.HandleInternalError(c, "exchanges_by_user", "ScyllaDB: "+err.Error())
	}

	metrics.ExchangesProposed.Inc()

	events.ExchangeRequested(listing.UserID, events.ExchangeEvent{
		ExchangeID:  exchangeID.String(),
		ListingID:   req.ListingID,
		RequesterID: userID,
		ProviderID:  listing.UserID,
		Status:      helpers.ExchangePending,
	})

	return c.JSON(schemas.ExchangeActionResponse{
		ExchangeID: exchangeID.String(),
		Status:     helpers.ExchangePending,
	})
}

// abortPropose unwinds a proposal whose exchange rows never landed: the
// duplicate guard is dropped so the listing can be requested again and the
// debit is reversed under its own idempotency key.
func abortPropose(listingID string, requesterID string, exchangeID string) {
	dropListingGuard(listingID, requesterID)
	if _, _, err := helpers.ApplyLedger(requesterID, helpers.ProposeFailOpKey(exchangeID), helpers.ProposalCostMinor); err != nil {
		errors.HandleBasicError(err)
	}
}

// AcceptExchange moves a pending request to active; provider only
func AcceptExchange(c *fiber.Ctx) error {
	return transitionExchange(c, helpers.ActionAccept)
}

// DeclineExchange cancels a pending request and refunds the proposal credit
// to the requester.
func DeclineExchange(c *fiber.Ctx) error {
	return transitionExchange(c, helpers.ActionDecline)
}

// AbandonExchange cancels an exchange from either side. The requester is
// refunded the unused share of the proposal credit.
func AbandonExchange(c *fiber.Ctx) error {
	return transitionExchange(c, helpers.ActionAbandon)
}

// transitionExchange is the single path every user-driven status change goes
// through: resolve the caller's role, look the (role, action) pair up in the
// transition table, move the row with an LWT, then settle refunds and events.
func transitionExchange(c *fiber.Ctx, action string) error {

	userID := c.Locals("userid").(string)
	exchangeID := c.Params("exchangeID")

	exchange, err := getExchange(exchangeID)
	if err != nil {
		if err == gocql.ErrNotFound {
			return errors.HandleBadRequestError(c, "ExchangeID", "invalid")
		}
		return errors.HandleInternalError(c, "exchanges", "ScyllaDB: "+err.Error())
	}

	role, ok := helpers.ExchangeRole(userID, exchange.RequesterID, exchange.ProviderID)
	if !ok {
		return errors.HandleBadRequestError(c, "ExchangeID", "not participant")
	}

	to, ok := helpers.AllowedTransition(role, action, exchange.Status)
	if !ok {
		return errors.HandleInvalidRequestError(c, "Exchange", "invalid transition")
	}

	applied, err := helpers.ApplyTransition(exchangeID, exchange.Status, to)
	if err != nil {
		return errors.HandleInternalError(c, "exchanges", "ScyllaDB: "+err.Error())
	}
	if !applied {
		return errors.HandleInvalidRequestError(c, "Exchange", "stale status")
	}

	if err = syncExchangeStatus(&exchange, to); err != nil {
		return errors.HandleInternalError(c, "exchanges_by_user", "ScyllaDB: "+err.Error())
	}

	response := schemas.ExchangeActionResponse{
		ExchangeID: exchangeID,
		Status:     to,
	}

	if to == helpers.ExchangeCancelled {
		dropListingGuard(exchange.ListingID, exchange.RequesterID)

		refund := helpers.DeclineRefundMinor
		if action == helpers.ActionAbandon {
			refund = helpers.ProratedRefundMinor(exchange.CompletedSessions, exchange.TotalSessions)
		}

		if refund > 0 {
			_, refunded, err := helpers.ApplyLedger(exchange.RequesterID, helpers.RefundOpKey(exchangeID), refund)
			if err != nil {
				errors.HandleBasicError(err)
			} else if refunded {
				metrics.RefundsApplied.Inc()
				response.RefundedTo = exchange.RequesterID
				response.RefundAmount = helpers.CreditsFromMinor(refund)
			}
		}
	}

	event := events.ExchangeEvent{
		ExchangeID:  exchangeID,
		ListingID:   exchange.ListingID,
		RequesterID: exchange.RequesterID,
		ProviderID:  exchange.ProviderID,
		Status:      to,
	}

	counterparty := exchange.RequesterID
	if role == helpers.RoleRequester {
		counterparty = exchange.ProviderID
	}

	switch action {
	case helpers.ActionAccept:
		events.ExchangeAccepted(counterparty, userID, event)
	case helpers.ActionDecline:
		events.ExchangeDeclined(counterparty, userID, event)
	case helpers.ActionAbandon:
		events.ExchangeCancelled(counterparty, userID, event)
	}

	return c.JSON(response)
}

// GetExchanges returns the caller's exchanges grouped by status
func GetExchanges(c *fiber.Ctx) error {

	userID := c.Locals("userid").(string)

	iter := global.Session.Query(`
		SELECT * FROM exchanges_by_user WHERE user_id = ?;`,
		userID,
	).WithContext(global.Context).Iter()

	defer iter.Close()

	grouped := schemas.ExchangesSchema{
		Pending:   []schemas.ExchangeSchema{},
		Active:    []schemas.ExchangeSchema{},
		Completed: []schemas.ExchangeSchema{},
		Cancelled: []schemas.ExchangeSchema{},
	}

	for {
		row := make(map[string]interface{})
		if !iter.MapScan(row) {
			break
		}

		exchange := exchangeFromRow(row)

		switch exchange.Status {
		case helpers.ExchangePending:
			grouped.Pending = append(grouped.Pending, exchange)
		case helpers.ExchangeActive:
			grouped.Active = append(grouped.Active, exchange)
		case helpers.ExchangeCompleted:
			grouped.Completed = append(grouped.Completed, exchange)
		case helpers.ExchangeCancelled:
			grouped.Cancelled = append(grouped.Cancelled, exchange)
		}
	}

	return c.JSON(grouped)
}

// completeExchange is the system transition out of the active state, entered
// when the final session of an exchange is confirmed.
func completeExchange(exchange *schemas.ExchangeSchema) error {

	to, ok := helpers.AllowedTransition(helpers.RoleSystem, helpers.ActionComplete, exchange.Status)
	if !ok {
		return nil
	}

	applied, err := helpers.ApplyTransition(exchange.ExchangeID, exchange.Status, to)
	if err != nil {
		return err
	}
	if !applied {
		return nil
	}

	if err = syncExchangeStatus(exchange, to); err != nil {
		return err
	}

	dropListingGuard(exchange.ListingID, exchange.RequesterID)
	metrics.ExchangesCompleted.Inc()

	event := events.ExchangeEvent{
		ExchangeID:  exchange.ExchangeID,
		ListingID:   exchange.ListingID,
		RequesterID: exchange.RequesterID,
		ProviderID:  exchange.ProviderID,
		Status:      to,
	}
	events.ExchangeCompleted(exchange.RequesterID, event)
	events.ExchangeCompleted(exchange.ProviderID, event)

	exchange.Status = to

	return nil
}

func getExchange(exchangeID string) (schemas.ExchangeSchema, error) {

	row := make(map[string]interface{})

	err := global.Session.Query(`
		SELECT * FROM exchanges WHERE exchange_id = ? LIMIT 1;`,
		exchangeID,
	).WithContext(global.Context).MapScan(row)

	if err != nil {
		return schemas.ExchangeSchema{}, err
	}

	return exchangeFromRow(row), nil
}

func exchangeFromRow(row map[string]interface{}) schemas.ExchangeSchema {

	exchange := schemas.ExchangeSchema{}

	if id, ok := row["exchange_id"].(gocql.UUID); ok {
		exchange.ExchangeID = id.String()
	}
	if id, ok := row["listing_id"].(gocql.UUID); ok {
		exchange.ListingID = id.String()
	}
	exchange.RequesterID, _ = row["requester_id"].(string)
	exchange.ProviderID, _ = row["provider_id"].(string)
	exchange.PartnerUsername, _ = row["partner_username"].(string)
	exchange.SkillOffered, _ = row["skill_offered"].(string)
	exchange.Status, _ = row["status"].(string)
	exchange.CompletedSessions, _ = row["completed_sessions"].(int)
	exchange.TotalSessions, _ = row["total_sessions"].(int)
	exchange.Rating, _ = row["rating"].(int)
	if created, ok := row["created"].(time.Time); ok {
		exchange.Created = created.UnixMilli()
	}

	return exchange
}

func writeExchangeByUserRows(exchangeID string, listingID string, requesterID string, providerID string, skillOffered string, created time.Time) error {

	requesterName, _ := usernameOf(requesterID)
	providerName, _ := usernameOf(providerID)

	for _, row := range []struct {
		userID  string
		partner string
	}{
		{userID: requesterID, partner: providerName},
		{userID: providerID, partner: requesterName},
	} {
		err := global.Session.Query(`
			INSERT INTO exchanges_by_user (user_id,created,exchange_id,listing_id,requester_id,provider_id,partner_username,skill_offered,status,completed_sessions,total_sessions,rating)
			VALUES(?,?,?,?,?,?,?,?,?,?,?,?);`,
			row.userID,
			created,
			exchangeID,
			listingID,
			requesterID,
			providerID,
			row.partner,
			skillOffered,
			helpers.ExchangePending,
			0,
			helpers.DefaultTotalSessions,
			0,
		).WithContext(global.Context).Exec()
		if err != nil {
			return err
		}
	}

	return nil
}

// syncExchangeStatus pushes a status change into both per-user rows
func syncExchangeStatus(exchange *schemas.ExchangeSchema, status string) error {

	created := helpers.MilisecondsToTime(exchange.Created)

	for _, userID := range []string{exchange.RequesterID, exchange.ProviderID} {
		err := global.Session.Query(`
			UPDATE exchanges_by_user SET status = ?, completed_sessions = ? WHERE user_id = ? AND created = ?;`,
			status,
			exchange.CompletedSessions,
			userID,
			created,
		).WithContext(global.Context).Exec()
		if err != nil {
			return err
		}
	}

	return nil
}

func dropListingGuard(listingID string, requesterID string) {
	err := global.Session.Query(`
		DELETE FROM exchanges_by_listing WHERE listing_id = ? AND requester_id = ?;`,
		listingID,
		requesterID,
	).WithContext(global.Context).Exec()
	if err != nil {
		errors.HandleBasicError(err)
	}
}

func usernameOf(userID string) (string, error) {
	username := ""
	err := global.Session.Query(`
		SELECT username FROM profiles WHERE user_id = ? LIMIT 1;`,
		userID,
	).WithContext(global.Context).Scan(&username)
	return username, err
}
