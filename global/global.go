package global

import (
	"context"
	"crypto/rsa"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-redis/redis/v8"
	"github.com/gocql/gocql"
	"github.com/hibiken/asynq"
	minio "github.com/minio/minio-go/v7"
)

// InternalLogger logs errors that should never happen in normal circumstances
var InternalLogger *log.Logger

// MonitorLogger logs expected problems worth watching
var MonitorLogger *log.Logger

// Session for global scylla cql session
var Session *gocql.Session

// RedisClient for global redis queries
var RedisClient *redis.Client

// MinIOClient for global min io access
var MinIOClient *minio.Client

// TaskClient enqueues background tasks
var TaskClient *asynq.Client

// JwtKey used to sign jwt tokens
var JwtKey *rsa.PrivateKey

// JwtParseKey used to parse jwt tokens
var JwtParseKey *rsa.PublicKey

// RefreshTokenDuration determines the length of a refresh token (60 days)
var RefreshTokenDuration time.Duration = time.Hour * 24 * 60

// Context is the default context
var Context = context.Background()

// Validator validates incoming bodys of data
var Validator = validator.New()

// AvatarBucket holds profile avatars
const AvatarBucket = "avatars"

// AttachmentBucket holds chat file attachments
const AttachmentBucket = "attachments"

// EventChannel is the redis pub/sub channel carrying realtime events
const EventChannel = "skillswap:events"

// PublicObjectURL is the externally reachable object store base, set from
// config at startup.
var PublicObjectURL string

// AvatarURL builds the public url of a stored avatar object
func AvatarURL(objectName string) string {
	return PublicObjectURL + "/" + AvatarBucket + "/" + objectName
}
