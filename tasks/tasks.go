package tasks

import (
	"context"
	"time"

	"skillswap_server/config"
	"skillswap_server/errors"
	"skillswap_server/events"
	"skillswap_server/global"

	"github.com/hibiken/asynq"
	jsoniter "github.com/json-iterator/go"
)

const TypeSessionReminder = "session:reminder"

// ReminderLead is how long before the scheduled time the reminder fires
const ReminderLead = 15 * time.Minute

type SessionReminderPayload struct {
	SessionID string
}

// EnqueueSessionReminder schedules a reminder shortly before the session.
// Sessions scheduled inside the lead window get no reminder.
func EnqueueSessionReminder(sessionID string, scheduledAt time.Time) error {

	remindAt := scheduledAt.Add(-ReminderLead)
	if remindAt.Before(time.Now()) {
		return nil
	}

	payload, err := jsoniter.Marshal(SessionReminderPayload{SessionID: sessionID})
	if err != nil {
		return err
	}

	_, err = global.TaskClient.Enqueue(
		asynq.NewTask(TypeSessionReminder, payload),
		asynq.ProcessAt(remindAt),
	)
	return err
}

// StartWorker runs the background task server
func StartWorker() {

	server := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     config.Config.Redis.Addr,
			Password: config.Config.Redis.Password,
			DB:       config.Config.Redis.DB,
		},
		asynq.Config{
			Concurrency: config.Config.Tasks.Concurrency,
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeSessionReminder, handleSessionReminder)

	go func() {
		if err := server.Run(mux); err != nil {
			global.InternalLogger.Println("asynq server: " + err.Error())
		}
	}()
}

func handleSessionReminder(ctx context.Context, t *asynq.Task) error {

	payload := SessionReminderPayload{}
	if err := jsoniter.Unmarshal(t.Payload(), &payload); err != nil {
		return err
	}

	row := make(map[string]interface{})

	err := global.Session.Query(`
		SELECT * FROM sessions WHERE session_id = ? LIMIT 1;`,
		payload.SessionID,
	).WithContext(ctx).MapScan(row)

	if err != nil {
		return errors.HandleComplexError("session_reminder", "ScyllaDB: "+err.Error())
	}

	if status, _ := row["status"].(string); status != "scheduled" {
		return nil
	}

	mentorID, _ := row["mentor_id"].(string)
	menteeID, _ := row["mentee_id"].(string)
	link, _ := row["link"].(string)
	scheduledAt, _ := row["scheduled_at"].(time.Time)

	exchangeID := ""
	if id, ok := row["exchange_id"].(string); ok {
		exchangeID = id
	}

	events.SessionReminder(mentorID, payload.SessionID, exchangeID, link, scheduledAt.UnixMilli())
	events.SessionReminder(menteeID, payload.SessionID, exchangeID, link, scheduledAt.UnixMilli())

	return nil
}
