package services

import (
	"fmt"
	"time"

	"skillswap_server/errors"
	"skillswap_server/events"
	"skillswap_server/global"
	"skillswap_server/helpers"
	"skillswap_server/schemas"

	"github.com/gocql/gocql"
	"github.com/gofiber/fiber/v2"
)

// Progress request statuses
const (
	progressPending  = "pending"
	progressAccepted = "accepted"
)

// GetProgressRequests lists progress confirmations awaiting the caller
func GetProgressRequests(c *fiber.Ctx) error {

	userID := c.Locals("userid").(string)

	progress, err := pendingProgressRequests(userID)
	if err != nil {
		return errors.HandleInternalError(c, "progress_requests_by_user", "ScyllaDB: "+err.Error())
	}

	return c.JSON(progress)
}

// ConfirmProgress is the mentee accepting that a session happened. The
// request moves pending to accepted through an LWT, the exchange's session
// count steps forward capped at the total, and reaching the total completes
// the exchange.
func ConfirmProgress(c *fiber.Ctx) error {

	userID := c.Locals("userid").(string)
	requestID := c.Params("requestID")

	row := make(map[string]interface{})

	err := global.Session.Query(`
		SELECT * FROM progress_requests WHERE request_id = ? LIMIT 1;`,
		requestID,
	).WithContext(global.Context).MapScan(row)

	if err != nil {
		if err == gocql.ErrNotFound {
			return errors.HandleBadRequestError(c, "RequestID", "invalid")
		}
		return errors.HandleInternalError(c, "progress_requests", "ScyllaDB: "+err.Error())
	}

	request := progressFromRow(row)

	if request.MenteeID != userID {
		return errors.HandleBadRequestError(c, "RequestID", "not mentee")
	}

	if request.Status != progressPending {
		return errors.HandleInvalidRequestError(c, "Request", "already settled")
	}

	exchange, err := getExchange(request.ExchangeID)
	if err != nil {
		return errors.HandleInternalError(c, "exchanges", "ScyllaDB: "+err.Error())
	}

	// a cancelled or completed exchange takes no more confirmations; its
	// refund was already settled from the count it ended with
	if helpers.TerminalStatus(exchange.Status) {
		return errors.HandleInvalidRequestError(c, "Exchange", "already settled")
	}

	applied, err := global.Session.Query(`
		UPDATE progress_requests SET status = ? WHERE request_id = ? IF status = ?;`,
		progressAccepted,
		requestID,
		progressPending,
	).WithContext(global.Context).MapScanCAS(make(map[string]interface{}))

	if err != nil {
		return errors.HandleInternalError(c, "progress_requests", "ScyllaDB: "+err.Error())
	}
	if !applied {
		return errors.HandleInvalidRequestError(c, "Request", "already settled")
	}

	capped := helpers.CapSessions(request.NextSession, exchange.TotalSessions)

	for attempt := 0; attempt < 5; attempt++ {
		if exchange.CompletedSessions >= capped {
			break
		}

		applied, err = global.Session.Query(`
			UPDATE exchanges SET completed_sessions = ? WHERE exchange_id = ? IF completed_sessions = ?;`,
			capped,
			request.ExchangeID,
			exchange.CompletedSessions,
		).WithContext(global.Context).MapScanCAS(make(map[string]interface{}))

		if err != nil {
			return errors.HandleInternalError(c, "exchanges", "ScyllaDB: "+err.Error())
		}
		if applied {
			exchange.CompletedSessions = capped
			break
		}

		exchange, err = getExchange(request.ExchangeID)
		if err != nil {
			return errors.HandleInternalError(c, "exchanges", "ScyllaDB: "+err.Error())
		}
	}

	if err = syncExchangeStatus(&exchange, exchange.Status); err != nil {
		return errors.HandleInternalError(c, "exchanges_by_user", "ScyllaDB: "+err.Error())
	}

	if err = helpers.AwardXP(userID, helpers.SessionXP); err != nil {
		errors.HandleBasicError(err)
	}

	if exchange.CompletedSessions >= exchange.TotalSessions {
		if err = completeExchange(&exchange); err != nil {
			return errors.HandleInternalError(c, "exchanges", "ScyllaDB: "+err.Error())
		}
	}

	event := events.ProgressEvent{
		RequestID:   requestID,
		ExchangeID:  request.ExchangeID,
		MentorID:    request.MentorID,
		MenteeID:    request.MenteeID,
		NextSession: exchange.CompletedSessions,
		Total:       exchange.TotalSessions,
		Status:      progressAccepted,
	}
	events.ProgressConfirmed(request.MentorID, event)
	events.ProgressConfirmed(request.MenteeID, event)

	NotifyMessage(request.MenteeID, request.MentorID, fmt.Sprintf("Confirmed session %d of %d", exchange.CompletedSessions, exchange.TotalSessions))

	return c.JSON(schemas.ProgressRequestSchema{
		RequestID:     requestID,
		ExchangeID:    request.ExchangeID,
		MentorID:      request.MentorID,
		MenteeID:      request.MenteeID,
		NextSession:   exchange.CompletedSessions,
		TotalSessions: exchange.TotalSessions,
		Status:        progressAccepted,
	})
}

// createProgressRequest raises the confirmation for the next session of an
// exchange and notifies the mentee.
func createProgressRequest(exchange *schemas.ExchangeSchema) error {

	requestID := gocql.TimeUUID()
	next := helpers.NextSessionIndex(exchange.CompletedSessions, exchange.TotalSessions)
	created := requestID.Time().UTC()

	err := global.Session.Query(`
		INSERT INTO progress_requests (request_id,exchange_id,mentor_id,mentee_id,next_session,total_sessions,status,created)
		VALUES(?,?,?,?,?,?,?,?);`,
		requestID,
		exchange.ExchangeID,
		exchange.ProviderID,
		exchange.RequesterID,
		next,
		exchange.TotalSessions,
		progressPending,
		created,
	).WithContext(global.Context).Exec()

	if err != nil {
		return err
	}

	err = global.Session.Query(`
		INSERT INTO progress_requests_by_user (user_id,created,request_id,exchange_id,mentor_id,mentee_id,next_session,total_sessions,status)
		VALUES(?,?,?,?,?,?,?,?,?);`,
		exchange.RequesterID,
		created,
		requestID,
		exchange.ExchangeID,
		exchange.ProviderID,
		exchange.RequesterID,
		next,
		exchange.TotalSessions,
		progressPending,
	).WithContext(global.Context).Exec()

	if err != nil {
		return err
	}

	events.ProgressRequested(exchange.RequesterID, events.ProgressEvent{
		RequestID:   requestID.String(),
		ExchangeID:  exchange.ExchangeID,
		MentorID:    exchange.ProviderID,
		MenteeID:    exchange.RequesterID,
		NextSession: next,
		Total:       exchange.TotalSessions,
		Status:      progressPending,
	})

	NotifyMessage(exchange.ProviderID, exchange.RequesterID, fmt.Sprintf("Please confirm session %d of %d once it happens", next, exchange.TotalSessions))

	return nil
}

// pendingProgressRequests reads the caller's unsettled confirmations. Settled
// rows in the per-user table are skipped rather than rewritten; the request
// table is authoritative.
func pendingProgressRequests(userID string) ([]schemas.ProgressRequestSchema, error) {

	iter := global.Session.Query(`
		SELECT * FROM progress_requests_by_user WHERE user_id = ?;`,
		userID,
	).WithContext(global.Context).Iter()

	defer iter.Close()

	pending := []schemas.ProgressRequestSchema{}
	for {
		row := make(map[string]interface{})
		if !iter.MapScan(row) {
			break
		}

		request := progressFromRow(row)
		if request.Status != progressPending {
			continue
		}

		// resolve against the authoritative row; a confirm only updates there
		var status string
		err := global.Session.Query(`
			SELECT status FROM progress_requests WHERE request_id = ? LIMIT 1;`,
			request.RequestID,
		).WithContext(global.Context).Scan(&status)
		if err == nil && status != progressPending {
			continue
		}

		pending = append(pending, request)
	}

	return pending, nil
}

func progressFromRow(row map[string]interface{}) schemas.ProgressRequestSchema {

	request := schemas.ProgressRequestSchema{}

	if id, ok := row["request_id"].(gocql.UUID); ok {
		request.RequestID = id.String()
	}
	request.ExchangeID, _ = row["exchange_id"].(string)
	request.MentorID, _ = row["mentor_id"].(string)
	request.MenteeID, _ = row["mentee_id"].(string)
	request.NextSession, _ = row["next_session"].(int)
	request.TotalSessions, _ = row["total_sessions"].(int)
	request.Status, _ = row["status"].(string)
	if created, ok := row["created"].(time.Time); ok {
		request.Created = created.UnixMilli()
	}

	return request
}
