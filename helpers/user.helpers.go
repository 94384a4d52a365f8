package helpers

import (
	"regexp"
	"strconv"
	"time"

	"skillswap_server/errors"
	"skillswap_server/global"
	"skillswap_server/schemas"

	"github.com/gocql/gocql"
	"github.com/gofiber/fiber/v2"
)

// ValidUsername is the allowed username alphabet
var ValidUsername = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// MinimumAge is the youngest allowed account holder
const MinimumAge = 13

// XPPerLevel is the xp span of one level
const XPPerLevel = 1000

// SignupXP is awarded once when onboarding completes
const SignupXP = 50

// SessionXP is awarded to the learner per confirmed session
const SessionXP = 100

// LevelForXP converts total xp into a level
func LevelForXP(xp int) int {
	if xp < 0 {
		xp = 0
	}
	return xp/XPPerLevel + 1
}

// NextStreak computes the new streak count given the previous activity day.
// Consecutive calendar days extend the streak, a gap resets it, and a second
// touch on the same day leaves it alone.
func NextStreak(lastActive time.Time, now time.Time, current int) int {
	if current <= 0 {
		return 1
	}
	lastDay := lastActive.UTC().Truncate(24 * time.Hour)
	today := now.UTC().Truncate(24 * time.Hour)
	switch today.Sub(lastDay) {
	case 0:
		return current
	case 24 * time.Hour:
		return current + 1
	default:
		return 1
	}
}

// ValidateAge checks a YYYY-MM-DD date of birth against the minimum age
func ValidateAge(dateOfBirth string, now time.Time) (time.Time, bool) {
	dob, err := time.Parse("2006-01-02", dateOfBirth)
	if err != nil {
		return time.Time{}, false
	}
	cutoff := now.UTC().AddDate(-MinimumAge, 0, 0)
	if dob.After(cutoff) {
		return time.Time{}, false
	}
	return dob, true
}

// UsernameCandidate appends the probe attempt as a numeric suffix
func UsernameCandidate(base string, attempt int) string {
	if attempt <= 0 {
		return base
	}
	return base + strconv.Itoa(attempt)
}

// ClaimUsername probes profiles_by_username with numeric suffixes until an
// LWT insert applies, returning the claimed name.
func ClaimUsername(c *fiber.Ctx, base string, userID string) (string, error) {

	for attempt := 0; attempt < 50; attempt++ {
		candidate := UsernameCandidate(base, attempt)

		applied, err := global.Session.Query(`
			INSERT INTO profiles_by_username (username,user_id)
			VALUES(?,?)
			IF NOT EXISTS;`,
			candidate,
			userID,
		).WithContext(global.Context).MapScanCAS(make(map[string]interface{}))

		if err != nil {
			return "", errors.HandleInternalError(c, "profiles_by_username", "ScyllaDB: "+err.Error())
		}
		if applied {
			return candidate, nil
		}
	}

	return "", errors.HandleInvalidRequestError(c, "Username", "exhausted")
}

// GetUsernameByID gets only the username column by id
func GetUsernameByID(c *fiber.Ctx, id string) (string, error) {

	reqUsername := ""

	err := global.Session.Query(`
		SELECT username FROM profiles WHERE user_id = ? LIMIT 1;`,
		id,
	).WithContext(global.Context).Scan(&reqUsername)

	if err != nil {
		if err == gocql.ErrNotFound {
			return "", errors.HandleBadRequestError(c, "UserID", "invalid")
		}
		return "", errors.HandleInternalError(c, "profiles", "ScyllaDB: "+err.Error())
	}

	return reqUsername, nil
}

// CheckUser checks user by id
func CheckUser(id string) (bool, error) {

	var existCount int

	err := global.Session.Query(`
		SELECT count(*) FROM profiles WHERE user_id = ? LIMIT 1;`,
		id,
	).WithContext(global.Context).Scan(&existCount)

	if existCount == 0 {
		return false, err
	}
	return true, err
}

// ProfileMapper gets and maps a profile row into a profile struct
func ProfileMapper(profile *schemas.ProfileSchema, userID string) error {

	row := make(map[string]interface{})

	err := global.Session.Query(`
		SELECT * FROM profiles WHERE user_id = ? LIMIT 1;`,
		userID,
	).WithContext(global.Context).MapScan(row)

	if err != nil {
		return err
	}

	profile.UserID = userID
	profile.Username, _ = row["username"].(string)
	profile.Email, _ = row["email"].(string)
	profile.Bio, _ = row["bio"].(string)
	profile.AvatarURL, _ = row["avatar_url"].(string)
	profile.XP, _ = row["xp"].(int)
	profile.Level, _ = row["level"].(int)
	profile.StreakCount, _ = row["streak_count"].(int)
	if minor, ok := row["credits_minor"].(int64); ok {
		profile.Credits = CreditsFromMinor(minor)
	}
	if created, ok := row["created"].(time.Time); ok {
		profile.Created = created.UnixMilli()
	}

	return nil
}

// BadgesMapper collects a user's badges newest first
func BadgesMapper(userID string) ([]schemas.BadgeSchema, error) {

	iter := global.Session.Query(`
		SELECT * FROM badges WHERE user_id = ?;`,
		userID,
	).WithContext(global.Context).Iter()

	defer iter.Close()

	badges := []schemas.BadgeSchema{}
	var cur schemas.BadgeSchema
	for {
		row := make(map[string]interface{})
		if !iter.MapScan(row) {
			break
		}
		cur.BadgeType, _ = row["badge_type"].(string)
		cur.Name, _ = row["name"].(string)
		cur.Icon, _ = row["icon"].(string)
		cur.Description, _ = row["description"].(string)
		if created, ok := row["created"].(time.Time); ok {
			cur.Created = created.UnixMilli()
		}
		badges = append(badges, cur)
	}

	return badges, nil
}

// AwardXP adds xp to a profile and recomputes the level through a CAS loop
func AwardXP(userID string, amount int) error {

	for attempt := 0; attempt < 5; attempt++ {
		var xp int
		err := global.Session.Query(`
			SELECT xp FROM profiles WHERE user_id = ? LIMIT 1;`,
			userID,
		).WithContext(global.Context).Scan(&xp)
		if err != nil {
			return err
		}

		newXP := xp + amount
		applied, err := global.Session.Query(`
			UPDATE profiles SET xp = ?, level = ? WHERE user_id = ? IF xp = ?;`,
			newXP,
			LevelForXP(newXP),
			userID,
			xp,
		).WithContext(global.Context).MapScanCAS(make(map[string]interface{}))
		if err != nil {
			return err
		}
		if applied {
			return nil
		}
	}

	return errors.HandleComplexError("award_xp", "cas retries exhausted for "+userID)
}

// TouchStreak updates streak_count and last_active once per day
func TouchStreak(userID string) error {

	row := make(map[string]interface{})
	err := global.Session.Query(`
		SELECT streak_count, last_active FROM profiles WHERE user_id = ? LIMIT 1;`,
		userID,
	).WithContext(global.Context).MapScan(row)
	if err != nil {
		return err
	}

	current, _ := row["streak_count"].(int)
	lastActive, _ := row["last_active"].(time.Time)
	now := time.Now().UTC()

	next := NextStreak(lastActive, now, current)
	if next == current && !lastActive.IsZero() && now.Sub(lastActive) < 24*time.Hour {
		return nil
	}

	return global.Session.Query(`
		UPDATE profiles SET streak_count = ?, last_active = ? WHERE user_id = ?;`,
		next,
		now,
		userID,
	).WithContext(global.Context).Exec()
}
