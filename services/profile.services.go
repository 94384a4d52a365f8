package services

import (
	"strconv"
	"time"

	"skillswap_server/errors"
	"skillswap_server/global"
	"skillswap_server/helpers"
	"skillswap_server/schemas"

	"github.com/aidarkhanov/nanoid/v2"
	"github.com/gofiber/fiber/v2"
	minio "github.com/minio/minio-go/v7"
)

// GetProfile returns the caller's own profile with badges
func GetProfile(c *fiber.Ctx) error {

	userID := c.Locals("userid").(string)

	profile := schemas.ProfileSchema{}

	if err := helpers.ProfileMapper(&profile, userID); err != nil {
		return errors.HandleInternalError(c, "profiles", "ScyllaDB: "+err.Error())
	}

	badges, err := helpers.BadgesMapper(userID)
	if err != nil {
		return errors.HandleInternalError(c, "badges", "ScyllaDB: "+err.Error())
	}
	profile.Badges = badges

	return c.JSON(profile)
}

// GetPublicProfile returns another user's profile without email
func GetPublicProfile(c *fiber.Ctx) error {

	userID := c.Params("userID")

	exists, err := helpers.CheckUser(userID)
	if err != nil {
		return errors.HandleInternalError(c, "profiles", "ScyllaDB: "+err.Error())
	}
	if !exists {
		return errors.HandleBadRequestError(c, "UserID", "invalid")
	}

	profile := schemas.ProfileSchema{}

	if err := helpers.ProfileMapper(&profile, userID); err != nil {
		return errors.HandleInternalError(c, "profiles", "ScyllaDB: "+err.Error())
	}
	profile.Email = ""

	badges, err := helpers.BadgesMapper(userID)
	if err != nil {
		return errors.HandleInternalError(c, "badges", "ScyllaDB: "+err.Error())
	}
	profile.Badges = badges

	return c.JSON(profile)
}

// UpdateProfile updates bio, avatar url and, through the claim table, the
// username.
func UpdateProfile(c *fiber.Ctx) error {

	userID := c.Locals("userid").(string)
	username := c.Locals("username").(string)

	req := new(schemas.UpdateProfileSchema)

	if err := c.BodyParser(req); err != nil {
		return errors.HandleBadJsonError(c)
	}

	if err := global.Validator.Struct(req); err != nil {
		return errors.HandleValidatorError(c, err)
	}

	if req.Username != "" && req.Username != username {
		if !helpers.ValidUsername.MatchString(req.Username) {
			return errors.HandleBadRequestError(c, "Username", "regex")
		}

		claimed, err := helpers.ClaimUsername(c, req.Username, userID)
		if claimed == "" {
			return err
		}
		if claimed != req.Username {
			// a suffixed claim means the exact name was taken; roll it back
			global.Session.Query(`
				DELETE FROM profiles_by_username WHERE username = ?;`,
				claimed,
			).WithContext(global.Context).Exec()
			return errors.HandleInvalidRequestError(c, "Username", "exists")
		}

		err = global.Session.Query(`
			UPDATE profiles SET username = ? WHERE user_id = ?;`,
			req.Username,
			userID,
		).WithContext(global.Context).Exec()
		if err != nil {
			return errors.HandleInternalError(c, "profiles", "ScyllaDB: "+err.Error())
		}

		global.Session.Query(`
			DELETE FROM profiles_by_username WHERE username = ?;`,
			username,
		).WithContext(global.Context).Exec()
	}

	if req.DateOfBirth != "" {
		dob, ok := helpers.ValidateAge(req.DateOfBirth, time.Now())
		if !ok {
			return errors.HandleInvalidRequestError(c, "DateOfBirth", "minimum age")
		}
		err := global.Session.Query(`
			UPDATE profiles SET date_of_birth = ? WHERE user_id = ?;`,
			dob,
			userID,
		).WithContext(global.Context).Exec()
		if err != nil {
			return errors.HandleInternalError(c, "profiles", "ScyllaDB: "+err.Error())
		}
	}

	err := global.Session.Query(`
		UPDATE profiles SET bio = ?, avatar_url = ? WHERE user_id = ?;`,
		req.Bio,
		req.AvatarURL,
		userID,
	).WithContext(global.Context).Exec()

	if err != nil {
		return errors.HandleInternalError(c, "profiles", "ScyllaDB: "+err.Error())
	}

	return helpers.OKResponse(c)
}

// UploadAvatar stores an avatar image and points the profile at it
func UploadAvatar(c *fiber.Ctx) error {

	userID := c.Locals("userid").(string)

	form, err := c.MultipartForm()
	if err != nil {
		return errors.HandleBadRequestError(c, "Form", "invalid")
	}

	if len(form.File["avatar"]) == 0 {
		return errors.HandleBadRequestError(c, "Avatar", "missing")
	}

	if form.File["avatar"][0].Size > 2000000 {
		return errors.HandleBadRequestError(c, "Avatar", "exceeding size")
	}

	avatarFile, err := form.File["avatar"][0].Open()
	if err != nil {
		return errors.HandleBadRequestError(c, "Avatar", "invalid")
	}
	defer avatarFile.Close()

	contentType := form.File["avatar"][0].Header.Get("Content-Type")

	objectName, err := nanoid.GenerateString(objectNameAlphabet, 12)
	if err != nil {
		return errors.HandleInternalError(c, "nanoid", err.Error())
	}

	_, err = global.MinIOClient.PutObject(global.Context, global.AvatarBucket, objectName, avatarFile, -1, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return errors.HandleInternalError(c, "minio_put", err.Error())
	}

	avatarURL := global.AvatarURL(objectName)

	err = global.Session.Query(`
		UPDATE profiles SET avatar_url = ? WHERE user_id = ?;`,
		avatarURL,
		userID,
	).WithContext(global.Context).Exec()

	if err != nil {
		return errors.HandleInternalError(c, "profiles", "ScyllaDB: "+err.Error())
	}

	return c.JSON(struct {
		AvatarURL string
	}{
		AvatarURL: avatarURL,
	})
}

// GetPreferences reads the caller's preference hash
func GetPreferences(c *fiber.Ctx) error {

	userID := c.Locals("userid").(string)

	res, err := global.RedisClient.HGetAll(global.Context, "prefs:"+userID).Result()
	if err != nil {
		return errors.HandleInternalError(c, "prefs", "Redis: "+err.Error())
	}

	return c.JSON(preferencesFromHash(res, userID))
}

// UpdatePreferences writes dark mode and email notification switches. The
// cached credits field is server-owned and ignored on input.
func UpdatePreferences(c *fiber.Ctx) error {

	userID := c.Locals("userid").(string)

	req := new(schemas.PreferencesSchema)

	if err := c.BodyParser(req); err != nil {
		return errors.HandleBadJsonError(c)
	}

	query := map[string]interface{}{
		"darkmode":   strconv.FormatBool(req.DarkMode),
		"emailnotif": strconv.FormatBool(req.EmailNotif),
	}

	if err := global.RedisClient.HSet(global.Context, "prefs:"+userID, query).Err(); err != nil {
		return errors.HandleInternalError(c, "set_prefs", "Redis: "+err.Error())
	}

	return helpers.OKResponse(c)
}

// GetDashboard returns the initial app state
func GetDashboard(c *fiber.Ctx) error {

	userID := c.Locals("userid").(string)

	if err := helpers.TouchStreak(userID); err != nil {
		errors.HandleBasicError(err)
	}

	dashboard := schemas.DashboardSchema{}
	if err := buildDashboard(&dashboard, userID); err != nil {
		return errors.HandleInternalError(c, "dashboard", err.Error())
	}

	return c.JSON(dashboard)
}

func buildDashboard(dashboard *schemas.DashboardSchema, userID string) error {

	if err := helpers.ProfileMapper(&dashboard.Profile, userID); err != nil {
		return err
	}

	badges, err := helpers.BadgesMapper(userID)
	if err != nil {
		return err
	}
	dashboard.Profile.Badges = badges

	res, err := global.RedisClient.HGetAll(global.Context, "prefs:"+userID).Result()
	if err != nil {
		return err
	}
	dashboard.Preferences = preferencesFromHash(res, userID)

	dashboard.UnreadCount = helpers.TotalUnread(userID)

	return nil
}

func preferencesFromHash(res map[string]string, userID string) schemas.PreferencesSchema {
	return schemas.PreferencesSchema{
		DarkMode:      res["darkmode"] == "true",
		EmailNotif:    res["emailnotif"] != "false",
		CachedCredits: helpers.CreditsFromMinor(helpers.CachedCreditsMinor(userID)),
	}
}
