package middlewares

import (
	"skillswap_server/errors"
	"skillswap_server/global"
	"skillswap_server/helpers"

	"github.com/gocql/gocql"
	"github.com/gofiber/fiber/v2"
)

// ConversationMiddleware resolves the peer of a conversation request and runs
// the fast-path block check. Send paths still re-check the store right before
// insert; this only narrows the race window.
func ConversationMiddleware(c *fiber.Ctx) error {

	peerID, err := gocql.ParseUUID(c.Params("peerID"))
	if err != nil {
		return errors.HandleBadRequestError(c, "PeerID", "invalid")
	}

	userID := c.Locals("userid").(string)
	if peerID.String() == userID {
		return errors.HandleBadRequestError(c, "PeerID", "self")
	}

	var existCount int
	err = global.Session.Query(`
		SELECT count(*) FROM profiles WHERE user_id = ? LIMIT 1;`,
		peerID.String(),
	).WithContext(global.Context).Scan(&existCount)
	if err != nil {
		return errors.HandleInternalError(c, "profiles", "ScyllaDB: "+err.Error())
	}
	if existCount == 0 {
		return errors.HandleBadRequestError(c, "PeerID", "invalid")
	}

	pairKey := helpers.PairKey(userID, peerID.String())

	c.Locals("peerid", peerID.String())
	c.Locals("pairkey", pairKey)
	c.Locals("blockedcached", helpers.CachedBlockFlag(pairKey))
	return c.Next()
}
