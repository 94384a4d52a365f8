package helpers

import (
	"fmt"
	"time"

	"skillswap_server/config"
	"skillswap_server/errors"
	"skillswap_server/global"
	"skillswap_server/schemas"

	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt"
)

// GenerateJWT generates a jwt token with id and username claims
func GenerateJWT(userID string, username string) (string, error) {
	exp := time.Now().Add(time.Hour * 1).Unix()
	user := jwt.MapClaims{}
	user["id"] = userID
	user["username"] = username
	user["exp"] = exp
	jt := jwt.NewWithClaims(jwt.SigningMethodRS256, user)
	return jt.SignedString(global.JwtKey)
}

// ParseJWT parses a jwt to userID and username
func ParseJWT(c *fiber.Ctx, jwtString string) (string, string, error) {
	token, err := jwt.Parse(jwtString, func(token *jwt.Token) (interface{}, error) {
		return global.JwtParseKey, nil
	})
	if err != nil {
		if validationErr, ok := err.(*jwt.ValidationError); ok && validationErr.Errors == jwt.ValidationErrorExpired {
			return "expired", "", nil
		}
		return "", "", errors.HandleInternalError(c, "jwt_parse", err.Error())
	}
	user, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", "", errors.HandleInternalError(c, "jwt_claims", "invalid claims")
	}
	username, _ := user["username"].(string)
	return user["id"].(string), username, nil
}

// GenerateAndRefreshTokens generates and interacts with redis to store tokens and then sets response headers
func GenerateAndRefreshTokens(c *fiber.Ctx, userID string, sessionID string, username string, delExistingRecord bool) error {

	var tokens schemas.TokensSchema
	redisError := false

	_, err := global.RedisClient.Pipelined(global.Context, func(pipe redis.Pipeliner) error {

		var err error

		if delExistingRecord {
			err = pipe.Del(global.Context, "refreshtokens:"+sessionID).Err()
			if err != nil {
				redisError = true
				return errors.HandleInternalError(c, "refresh_tokens", "Redis: "+err.Error())
			}
			redisError = true
			return errors.HandleInvalidRequestError(c, "RefreshToken", "invalid")
		}

		tokens.RefreshToken.Token, err = RandomTokenString(40)
		if err != nil {
			redisError = true
			return errors.HandleInternalError(c, "token", "hex token error")
		}

		tokens.RefreshToken.ExpireAt = time.Now().UTC().Add(global.RefreshTokenDuration).Unix()

		query := map[string]interface{}{
			"token":    tokens.RefreshToken.Token,
			"userid":   userID,
			"username": username,
			"ip":       c.IP(),
		}

		err = pipe.HSet(global.Context, "refreshtokens:"+sessionID, query).Err()
		if err != nil {
			redisError = true
			return errors.HandleInternalError(c, "set_refresh_tokens", "Redis: "+err.Error())
		}
		err = pipe.Expire(global.Context, "refreshtokens:"+sessionID, global.RefreshTokenDuration).Err()
		if err != nil {
			redisError = true
			return errors.HandleInternalError(c, "expire_refresh_tokens", "Redis: "+err.Error())
		}

		tokens.AccessToken, err = GenerateJWT(userID, username)
		if err != nil {
			redisError = true
			return errors.HandleInternalError(c, "jwt", "jwt: "+err.Error())
		}

		return nil
	})

	if err != nil && !redisError {
		return errors.HandleInternalError(c, "pipeline", "Redis: "+err.Error())
	}
	if redisError {
		return err
	}

	c.Response().Header.Add("x-refreshed", "true")
	c.Response().Header.Add("x-refresh-token", tokens.RefreshToken.Token)
	c.Response().Header.Add("x-refresh-token-expire", fmt.Sprint(tokens.RefreshToken.ExpireAt))
	c.Response().Header.Add("x-access-token", tokens.AccessToken)
	return nil
}

// SendVerifEmail send a verification email
func SendVerifEmail(email string, code string) {
	from := "From: " + config.Config.EmailFrom + "\n"
	subject := "Subject: Verification code\n"
	mime := "MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\n\n"
	body := "<html><body><div><h1>Your code is: <b>" + code + "</b></h1><br><p>Please enter the code as instructed in the app within <b>24 hours</b></p></div></body></html>"

	err := EmailSender(email, from+subject+mime+body)
	if err != nil {
		global.MonitorLogger.Println("Email sender error: " + err.Error())
	}
}
