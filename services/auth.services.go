package services

import (
	"strings"
	"time"

	"skillswap_server/errors"
	"skillswap_server/global"
	"skillswap_server/helpers"
	"skillswap_server/schemas"

	"github.com/go-redis/redis/v8"
	"github.com/gocql/gocql"
	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

// Register users
func Register(c *fiber.Ctx) error {

	req := new(schemas.RegisterSchema)

	if err := c.BodyParser(req); err != nil {
		return errors.HandleBadJsonError(c)
	}

	if err := global.Validator.Struct(req); err != nil {
		return errors.HandleValidatorError(c, err)
	}

	if !helpers.ValidUsername.MatchString(req.Username) {
		return errors.HandleBadRequestError(c, "Username", "regex")
	}

	if _, ok := helpers.ValidateAge(req.DateOfBirth, time.Now()); !ok {
		return errors.HandleInvalidRequestError(c, "DateOfBirth", "minimum age")
	}

	var existCount int

	err := global.Session.Query(`
		SELECT count(*) FROM users WHERE email = ? LIMIT 1;`,
		strings.ToLower(req.Email),
	).WithContext(global.Context).Scan(&existCount)

	if err != nil {
		return errors.HandleInternalError(c, "users", "ScyllaDB: "+err.Error())
	}

	if existCount != 0 {
		return errors.HandleInvalidRequestError(c, "Email", "exists")
	}

	code, err := helpers.RandomTokenString(3)

	if err != nil {
		return errors.HandleInternalError(c, "code", "hex token error")
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return errors.HandleInternalError(c, "password", "hashing error")
	}

	code = strings.ToUpper(code)
	req.Email = strings.ToLower(req.Email)

	query := map[string]interface{}{
		"code":         code,
		"username":     req.Username,
		"passwordhash": passwordHash,
		"dateofbirth":  req.DateOfBirth,
	}

	redisError := false

	_, err = global.RedisClient.Pipelined(global.Context, func(pipe redis.Pipeliner) error {
		err = pipe.HSet(global.Context, "verifying:"+req.Email, query).Err()
		if err != nil {
			redisError = true
			return errors.HandleInternalError(c, "set_verifying", "Redis: "+err.Error())
		}
		err = pipe.Expire(global.Context, "verifying:"+req.Email, time.Hour*24).Err()
		if err != nil {
			redisError = true
			return errors.HandleInternalError(c, "expire_verifying", "Redis: "+err.Error())
		}
		return nil
	})

	if err != nil {
		return errors.HandleInternalError(c, "pipeline", "Redis: "+err.Error())
	}

	if redisError {
		return err
	}

	helpers.SendVerifEmail(req.Email, code)

	return helpers.OKResponse(c)
}

// ResendVerification resends verification email
func ResendVerification(c *fiber.Ctx) error {

	req := new(schemas.EmailSchema)

	if err := c.BodyParser(req); err != nil {
		return errors.HandleBadJsonError(c)
	}

	if err := global.Validator.Struct(req); err != nil {
		return errors.HandleValidatorError(c, err)
	}

	req.Email = strings.ToLower(req.Email)

	code, err := global.RedisClient.HGet(global.Context, "verifying:"+req.Email, "code").Result()
	if err != nil {
		if err == redis.Nil {
			return errors.HandleBadRequestError(c, "Email", "invalid")
		}
		return errors.HandleInternalError(c, "get_verifying", "Redis: "+err.Error())
	}

	helpers.SendVerifEmail(req.Email, code)

	return helpers.OKResponse(c)
}

// VerifyEmail verifies email and creates the profile with its onboarding
// rewards.
func VerifyEmail(c *fiber.Ctx) error {

	req := new(schemas.VerifyEmailSchema)

	if err := c.BodyParser(req); err != nil {
		return errors.HandleBadJsonError(c)
	}

	if err := global.Validator.Struct(req); err != nil {
		return errors.HandleValidatorError(c, err)
	}

	req.Email = strings.ToLower(req.Email)

	res, err := global.RedisClient.HGetAll(global.Context, "verifying:"+req.Email).Result()
	if err != nil {
		if err == redis.Nil {
			return errors.HandleBadRequestError(c, "Email", "invalid")
		}
		return errors.HandleInternalError(c, "getall_verifying", "Redis: "+err.Error())
	}

	if len(res) == 0 || res["code"] != req.Code {
		return errors.HandleInvalidRequestError(c, "Code", "invalid")
	}

	userID := gocql.TimeUUID().String()

	username, err := helpers.ClaimUsername(c, res["username"], userID)
	if username == "" {
		return err
	}

	dob, _ := time.Parse("2006-01-02", res["dateofbirth"])

	err = global.Session.Query(`
		INSERT INTO users (email,user_id,username,password_hash,created)
		VALUES(?,?,?,?,?);`,
		req.Email,
		userID,
		username,
		res["passwordhash"],
		time.Now().UTC(),
	).WithContext(global.Context).Exec()

	if err != nil {
		return errors.HandleInternalError(c, "users", "ScyllaDB: "+err.Error())
	}

	if err = createProfile(userID, username, req.Email, dob); err != nil {
		return errors.HandleInternalError(c, "profiles", "ScyllaDB: "+err.Error())
	}

	global.RedisClient.Del(global.Context, "verifying:"+req.Email)

	return helpers.OKResponse(c)
}

// Login log users in
func Login(c *fiber.Ctx) error {

	req := new(schemas.LoginSchema)

	if err := c.BodyParser(req); err != nil {
		return errors.HandleBadJsonError(c)
	}

	if err := global.Validator.Struct(req); err != nil {
		return errors.HandleValidatorError(c, err)
	}

	req.Email = strings.ToLower(req.Email)

	mainResult := make(map[string]interface{})

	err := global.Session.Query(`
		SELECT * FROM users WHERE email = ? LIMIT 1;`,
		req.Email,
	).WithContext(global.Context).MapScan(mainResult)

	if err != nil {
		if err == gocql.ErrNotFound {
			return errors.HandleInvalidRequestError(c, "Email", "invalid")
		}
		return errors.HandleInternalError(c, "users", "ScyllaDB: "+err.Error())
	}

	userID, _ := mainResult["user_id"].(string)
	username, _ := mainResult["username"].(string)

	err = bcrypt.CompareHashAndPassword([]byte(mainResult["password_hash"].(string)), []byte(req.Password))
	if err != nil {
		return errors.HandleInvalidRequestError(c, "Password", "invalid")
	}

	if err = ensureProfile(userID, username, req.Email); err != nil {
		return errors.HandleInternalError(c, "profiles", "ScyllaDB: "+err.Error())
	}

	if err = helpers.TouchStreak(userID); err != nil {
		errors.HandleBasicError(err)
	}

	sessionID, err := helpers.RandomTokenString(20)
	if sessionID == "" {
		return errors.HandleInternalError(c, "session", "hex token error")
	}

	c.Response().Header.Add("x-session-id", sessionID)

	if err = helpers.GenerateAndRefreshTokens(c, userID, sessionID, username, false); err != nil {
		return err
	}

	dashboard := schemas.DashboardSchema{}
	if err = buildDashboard(&dashboard, userID); err != nil {
		return errors.HandleInternalError(c, "dashboard", err.Error())
	}

	return c.JSON(dashboard)
}

// Logout drops the caller's refresh session. Only server-side session state
// and the caller's own preference cache entry are touched; other sessions of
// the same account keep their tokens.
func Logout(c *fiber.Ctx) error {

	userID := c.Locals("userid").(string)
	sessionID := c.Locals("sessionid").(string)

	if err := global.RedisClient.Del(global.Context, "refreshtokens:"+sessionID, "prefs:"+userID).Err(); err != nil {
		return errors.HandleInternalError(c, "del_refresh_tokens", "Redis: "+err.Error())
	}

	return helpers.OKResponse(c)
}

// createProfile writes the initial profile row and welcome badge for a user
func createProfile(userID string, username string, email string, dob time.Time) error {

	err := global.Session.Query(`
		INSERT INTO profiles (user_id,username,email,bio,avatar_url,xp,level,streak_count,credits_minor,date_of_birth,last_active,created)
		VALUES(?,?,?,?,?,?,?,?,?,?,?,?);`,
		userID,
		username,
		email,
		"",
		"",
		helpers.SignupXP,
		helpers.LevelForXP(helpers.SignupXP),
		1,
		helpers.StartingCreditsMinor,
		dob,
		time.Now().UTC(),
		time.Now().UTC(),
	).WithContext(global.Context).Exec()

	if err != nil {
		return err
	}

	return global.Session.Query(`
		INSERT INTO badges (user_id,badge_type,name,icon,description,created)
		VALUES(?,?,?,?,?,?);`,
		userID,
		"welcome",
		"Welcome Aboard",
		"👋",
		"Joined the community",
		time.Now().UTC(),
	).WithContext(global.Context).Exec()
}

// ensureProfile backfills a missing profile row for an already verified user
func ensureProfile(userID string, username string, email string) error {

	existing := make(map[string]interface{})

	err := global.Session.Query(`
		SELECT user_id FROM profiles WHERE user_id = ? LIMIT 1;`,
		userID,
	).WithContext(global.Context).MapScan(existing)

	if err == nil {
		return nil
	}
	if err != gocql.ErrNotFound {
		return err
	}

	return createProfile(userID, username, email, time.Time{})
}
