package services

import (
	"time"

	"skillswap_server/errors"
	"skillswap_server/events"
	"skillswap_server/global"
	"skillswap_server/helpers"
	"skillswap_server/schemas"
	"skillswap_server/tasks"

	"github.com/gocql/gocql"
	"github.com/gofiber/fiber/v2"
)

// Session statuses
const (
	sessionScheduled = "scheduled"
	sessionCompleted = "completed"
)

// ScheduleSession books a session on an active exchange. The provider is the
// mentor; scheduling also raises the progress request the mentee will confirm
// afterwards, one step past the sessions completed so far.
func ScheduleSession(c *fiber.Ctx) error {

	userID := c.Locals("userid").(string)

	req := new(schemas.ScheduleSessionSchema)

	if err := c.BodyParser(req); err != nil {
		return errors.HandleBadJsonError(c)
	}

	if err := global.Validator.Struct(req); err != nil {
		return errors.HandleValidatorError(c, err)
	}

	exchange, err := getExchange(req.ExchangeID)
	if err != nil {
		if err == gocql.ErrNotFound {
			return errors.HandleBadRequestError(c, "ExchangeID", "invalid")
		}
		return errors.HandleInternalError(c, "exchanges", "ScyllaDB: "+err.Error())
	}

	if _, ok := helpers.ExchangeRole(userID, exchange.RequesterID, exchange.ProviderID); !ok {
		return errors.HandleBadRequestError(c, "ExchangeID", "not participant")
	}

	if exchange.Status != helpers.ExchangeActive {
		return errors.HandleInvalidRequestError(c, "Exchange", "not active")
	}

	scheduledAt := helpers.MilisecondsToTime(req.ScheduledAt)
	if scheduledAt.Before(time.Now()) {
		return errors.HandleBadRequestError(c, "ScheduledAt", "past")
	}

	link := helpers.NormalizeLink(req.Link)
	mentorID := exchange.ProviderID
	menteeID := exchange.RequesterID

	sessionID := gocql.TimeUUID()

	err = global.Session.Query(`
		INSERT INTO sessions (session_id,exchange_id,mentor_id,mentee_id,link,scheduled_at,status,satisfied,created)
		VALUES(?,?,?,?,?,?,?,?,?);`,
		sessionID,
		req.ExchangeID,
		mentorID,
		menteeID,
		link,
		scheduledAt,
		sessionScheduled,
		false,
		sessionID.Time().UTC(),
	).WithContext(global.Context).Exec()

	if err != nil {
		return errors.HandleInternalError(c, "sessions", "ScyllaDB: "+err.Error())
	}

	for _, participant := range []string{mentorID, menteeID} {
		err = global.Session.Query(`
			INSERT INTO sessions_by_user (user_id,scheduled_at,session_id,exchange_id,mentor_id,mentee_id,link,status,skill_offered)
			VALUES(?,?,?,?,?,?,?,?,?);`,
			participant,
			scheduledAt,
			sessionID,
			req.ExchangeID,
			mentorID,
			menteeID,
			link,
			sessionScheduled,
			exchange.SkillOffered,
		).WithContext(global.Context).Exec()
		if err != nil {
			return errors.HandleInternalError(c, "sessions_by_user", "ScyllaDB: "+err.Error())
		}
	}

	if err = createProgressRequest(&exchange); err != nil {
		errors.HandleBasicError(err)
	}

	NotifyMessage(mentorID, menteeID, "Session scheduled for "+scheduledAt.Format("Jan 2 15:04 MST")+": "+link)

	if err = tasks.EnqueueSessionReminder(sessionID.String(), scheduledAt); err != nil {
		errors.HandleBasicError(err)
	}

	events.SessionScheduled(mentorID, sessionID.String(), req.ExchangeID, link, scheduledAt.UnixMilli())
	events.SessionScheduled(menteeID, sessionID.String(), req.ExchangeID, link, scheduledAt.UnixMilli())

	return c.JSON(schemas.SessionSchema{
		SessionID:    sessionID.String(),
		ExchangeID:   req.ExchangeID,
		MentorID:     mentorID,
		MenteeID:     menteeID,
		Link:         link,
		ScheduledAt:  scheduledAt.UnixMilli(),
		Status:       sessionScheduled,
		SkillOffered: exchange.SkillOffered,
	})
}

// GetUpcomingSessions lists the caller's sessions from now on
func GetUpcomingSessions(c *fiber.Ctx) error {

	userID := c.Locals("userid").(string)

	iter := global.Session.Query(`
		SELECT * FROM sessions_by_user WHERE user_id = ? AND scheduled_at >= ?;`,
		userID,
		time.Now().UTC(),
	).WithContext(global.Context).Iter()

	defer iter.Close()

	sessions := []schemas.SessionSchema{}
	for {
		row := make(map[string]interface{})
		if !iter.MapScan(row) {
			break
		}
		sessions = append(sessions, sessionFromRow(row))
	}

	return c.JSON(sessions)
}

// CompleteSession marks a session done with the mentee's satisfaction flag
func CompleteSession(c *fiber.Ctx) error {

	userID := c.Locals("userid").(string)
	sessionID := c.Params("sessionID")

	req := new(schemas.CompleteSessionSchema)

	if err := c.BodyParser(req); err != nil {
		return errors.HandleBadJsonError(c)
	}

	row := make(map[string]interface{})

	err := global.Session.Query(`
		SELECT * FROM sessions WHERE session_id = ? LIMIT 1;`,
		sessionID,
	).WithContext(global.Context).MapScan(row)

	if err != nil {
		if err == gocql.ErrNotFound {
			return errors.HandleBadRequestError(c, "SessionID", "invalid")
		}
		return errors.HandleInternalError(c, "sessions", "ScyllaDB: "+err.Error())
	}

	session := sessionFromRow(row)

	if userID != session.MentorID && userID != session.MenteeID {
		return errors.HandleBadRequestError(c, "SessionID", "not participant")
	}

	if session.Status == sessionCompleted {
		return helpers.OKResponse(c)
	}

	err = global.Session.Query(`
		UPDATE sessions SET status = ?, satisfied = ? WHERE session_id = ?;`,
		sessionCompleted,
		req.Satisfied,
		sessionID,
	).WithContext(global.Context).Exec()

	if err != nil {
		return errors.HandleInternalError(c, "sessions", "ScyllaDB: "+err.Error())
	}

	for _, participant := range []string{session.MentorID, session.MenteeID} {
		err = global.Session.Query(`
			UPDATE sessions_by_user SET status = ? WHERE user_id = ? AND scheduled_at = ?;`,
			sessionCompleted,
			participant,
			helpers.MilisecondsToTime(session.ScheduledAt),
		).WithContext(global.Context).Exec()
		if err != nil {
			return errors.HandleInternalError(c, "sessions_by_user", "ScyllaDB: "+err.Error())
		}
	}

	return helpers.OKResponse(c)
}

// GetInbox aggregates everything awaiting the caller: incoming swap
// requests, upcoming sessions, pending progress confirmations and the unread
// message total.
func GetInbox(c *fiber.Ctx) error {

	userID := c.Locals("userid").(string)

	inbox := schemas.InboxSchema{
		Requests: []schemas.ExchangeSchema{},
		Sessions: []schemas.SessionSchema{},
		Progress: []schemas.ProgressRequestSchema{},
	}

	iter := global.Session.Query(`
		SELECT * FROM exchanges_by_user WHERE user_id = ?;`,
		userID,
	).WithContext(global.Context).Iter()

	for {
		row := make(map[string]interface{})
		if !iter.MapScan(row) {
			break
		}
		exchange := exchangeFromRow(row)
		// only requests awaiting the caller's decision belong in the inbox
		if exchange.Status == helpers.ExchangePending && exchange.ProviderID == userID {
			inbox.Requests = append(inbox.Requests, exchange)
		}
	}
	if err := iter.Close(); err != nil {
		return errors.HandleInternalError(c, "exchanges_by_user", "ScyllaDB: "+err.Error())
	}

	iter = global.Session.Query(`
		SELECT * FROM sessions_by_user WHERE user_id = ? AND scheduled_at >= ?;`,
		userID,
		time.Now().UTC(),
	).WithContext(global.Context).Iter()

	for {
		row := make(map[string]interface{})
		if !iter.MapScan(row) {
			break
		}
		inbox.Sessions = append(inbox.Sessions, sessionFromRow(row))
	}
	if err := iter.Close(); err != nil {
		return errors.HandleInternalError(c, "sessions_by_user", "ScyllaDB: "+err.Error())
	}

	progress, err := pendingProgressRequests(userID)
	if err != nil {
		return errors.HandleInternalError(c, "progress_requests_by_user", "ScyllaDB: "+err.Error())
	}
	inbox.Progress = progress

	inbox.UnreadCount = helpers.TotalUnread(userID)

	return c.JSON(inbox)
}

func sessionFromRow(row map[string]interface{}) schemas.SessionSchema {

	session := schemas.SessionSchema{}

	if id, ok := row["session_id"].(gocql.UUID); ok {
		session.SessionID = id.String()
	}
	session.ExchangeID, _ = row["exchange_id"].(string)
	session.MentorID, _ = row["mentor_id"].(string)
	session.MenteeID, _ = row["mentee_id"].(string)
	session.Link, _ = row["link"].(string)
	session.Status, _ = row["status"].(string)
	session.Satisfied, _ = row["satisfied"].(bool)
	session.SkillOffered, _ = row["skill_offered"].(string)
	if scheduledAt, ok := row["scheduled_at"].(time.Time); ok {
		session.ScheduledAt = scheduledAt.UnixMilli()
	}

	return session
}
