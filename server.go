package main

import (
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"io/ioutil"
	"log"
	"net/http"
	"os"

	"skillswap_server/config"
	"skillswap_server/errors"
	"skillswap_server/events"
	"skillswap_server/global"
	"skillswap_server/metrics"
	"skillswap_server/routes"
	"skillswap_server/socket"
	"skillswap_server/tasks"

	redis "github.com/go-redis/redis/v8"
	"github.com/gocql/gocql"
	fiber "github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
	minio "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func init() {
	internalErrorsFile, err := os.OpenFile("internal_errors.txt", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
	errors.HandleFatalError(err)

	monitorErrorsFile, err := os.OpenFile("monitor_logs.txt", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
	errors.HandleFatalError(err)

	global.InternalLogger = log.New(internalErrorsFile, "", log.LstdFlags)
	global.MonitorLogger = log.New(monitorErrorsFile, "", log.LstdFlags)

	data, err := ioutil.ReadFile("./config.json")
	errors.HandleFatalError(err)

	err = json.Unmarshal(data, &config.Config)
	errors.HandleFatalError(err)

	global.PublicObjectURL = config.Config.MinIO.PublicURL

	jwtKeyStream, err := ioutil.ReadFile("./jwt_key.pem")
	errors.HandleFatalError(err)
	block, _ := pem.Decode(jwtKeyStream)
	global.JwtKey, _ = x509.ParsePKCS1PrivateKey(block.Bytes)

	jwtKeyStream, err = ioutil.ReadFile("./jwt_key.pub")
	errors.HandleFatalError(err)
	block, _ = pem.Decode(jwtKeyStream)
	global.JwtParseKey, _ = x509.ParsePKCS1PublicKey(block.Bytes)

	global.MinIOClient, err = minio.New(config.Config.MinIO.Addr, &minio.Options{
		Creds:  credentials.NewStaticV4(config.Config.MinIO.User, config.Config.MinIO.Password, ""),
		Secure: false,
	})
	errors.HandleFatalError(err)

	for _, bucket := range []string{global.AvatarBucket, global.AttachmentBucket} {
		exists, err := global.MinIOClient.BucketExists(global.Context, bucket)
		errors.HandleFatalError(err)
		if !exists {
			global.MinIOClient.MakeBucket(global.Context, bucket, minio.MakeBucketOptions{Region: "us-east-1"})
		}
	}

	global.RedisClient = redis.NewClient(&redis.Options{
		Addr:     config.Config.Redis.Addr,
		Password: config.Config.Redis.Password,
		DB:       config.Config.Redis.DB,
	})

	global.TaskClient = asynq.NewClient(asynq.RedisClientOpt{
		Addr:     config.Config.Redis.Addr,
		Password: config.Config.Redis.Password,
		DB:       config.Config.Redis.DB,
	})

	cluster := gocql.NewCluster(config.Config.Scylla.Addr)
	cluster.Keyspace = config.Config.Scylla.Keyspace
	global.Session, err = cluster.CreateSession()
	errors.HandleFatalError(err)
	fmt.Println("ScyllaDB initialized")
	fmt.Printf("Keyspace: %s\n\n", cluster.Keyspace)

	keyspace := config.Config.Scylla.Keyspace

	for _, stmt := range []string{`
		CREATE TABLE IF NOT EXISTS ` + keyspace + `.users (
			email text,
			user_id text,
			username text,
			password_hash text,
			created timestamp,
			PRIMARY KEY (email))
		WITH compaction = { 'class' :  'LeveledCompactionStrategy'  };
	`, `
		CREATE TABLE IF NOT EXISTS ` + keyspace + `.profiles (
			user_id text,
			username text,
			email text,
			bio text,
			avatar_url text,
			xp int,
			level int,
			streak_count int,
			credits_minor bigint,
			date_of_birth timestamp,
			last_active timestamp,
			created timestamp,
			PRIMARY KEY (user_id))
		WITH compaction = { 'class' :  'LeveledCompactionStrategy'  };
	`, `
		CREATE TABLE IF NOT EXISTS ` + keyspace + `.profiles_by_username (
			username text,
			user_id text,
			PRIMARY KEY (username))
		WITH compaction = { 'class' :  'LeveledCompactionStrategy'  };
	`, `
		CREATE TABLE IF NOT EXISTS ` + keyspace + `.badges (
			user_id text,
			badge_type text,
			name text,
			icon text,
			description text,
			created timestamp,
			PRIMARY KEY (user_id, badge_type))
		WITH compaction = { 'class' :  'LeveledCompactionStrategy'  };
	`, `
		CREATE TABLE IF NOT EXISTS ` + keyspace + `.listings (
			listing_id uuid,
			user_id text,
			username text,
			skill_offered text,
			skill_wanted text,
			category text,
			description text,
			status text,
			created timestamp,
			PRIMARY KEY (listing_id))
		WITH compaction = { 'class' :  'LeveledCompactionStrategy'  };
	`, `
		CREATE TABLE IF NOT EXISTS ` + keyspace + `.listings_by_user (
			listing_id uuid,
			user_id text,
			username text,
			skill_offered text,
			skill_wanted text,
			category text,
			description text,
			status text,
			created timestamp,
			PRIMARY KEY (user_id, created))
		WITH
		CLUSTERING ORDER BY (created DESC) AND
		compaction = { 'class' :  'LeveledCompactionStrategy'  };
	`, `
		CREATE TABLE IF NOT EXISTS ` + keyspace + `.listings_by_status (
			listing_id uuid,
			user_id text,
			username text,
			skill_offered text,
			skill_wanted text,
			category text,
			description text,
			status text,
			created timestamp,
			PRIMARY KEY (status, created))
		WITH
		CLUSTERING ORDER BY (created DESC) AND
		compaction = { 'class' :  'LeveledCompactionStrategy'  };
	`, `
		CREATE TABLE IF NOT EXISTS ` + keyspace + `.exchanges (
			exchange_id uuid,
			listing_id uuid,
			requester_id text,
			provider_id text,
			status text,
			completed_sessions int,
			total_sessions int,
			rating int,
			skill_offered text,
			created timestamp,
			PRIMARY KEY (exchange_id))
		WITH compaction = { 'class' :  'LeveledCompactionStrategy'  };
	`, `
		CREATE TABLE IF NOT EXISTS ` + keyspace + `.exchanges_by_user (
			user_id text,
			created timestamp,
			exchange_id uuid,
			listing_id uuid,
			requester_id text,
			provider_id text,
			partner_username text,
			skill_offered text,
			status text,
			completed_sessions int,
			total_sessions int,
			rating int,
			PRIMARY KEY (user_id, created))
		WITH
		CLUSTERING ORDER BY (created DESC) AND
		compaction = { 'class' :  'LeveledCompactionStrategy'  };
	`, `
		CREATE TABLE IF NOT EXISTS ` + keyspace + `.exchanges_by_listing (
			listing_id uuid,
			requester_id text,
			exchange_id uuid,
			PRIMARY KEY (listing_id, requester_id))
		WITH compaction = { 'class' :  'LeveledCompactionStrategy'  };
	`, `
		CREATE TABLE IF NOT EXISTS ` + keyspace + `.messages (
			pair_key text,
			created timestamp,
			message_id uuid,
			sender_id text,
			receiver_id text,
			content text,
			attachment text,
			read boolean,
			PRIMARY KEY (pair_key, created))
		WITH
		CLUSTERING ORDER BY (created DESC) AND
		compaction = { 'class' :  'SizeTieredCompactionStrategy'  };
	`, `
		CREATE TABLE IF NOT EXISTS ` + keyspace + `.blocked_users (
			user_id text,
			blocked_id text,
			reason text,
			created timestamp,
			PRIMARY KEY (user_id, blocked_id))
		WITH compaction = { 'class' :  'LeveledCompactionStrategy'  };
	`, `
		CREATE TABLE IF NOT EXISTS ` + keyspace + `.chat_resets (
			pair_key text,
			reset_at timestamp,
			PRIMARY KEY (pair_key))
		WITH compaction = { 'class' :  'LeveledCompactionStrategy'  };
	`, `
		CREATE TABLE IF NOT EXISTS ` + keyspace + `.sessions (
			session_id uuid,
			exchange_id text,
			mentor_id text,
			mentee_id text,
			link text,
			scheduled_at timestamp,
			status text,
			satisfied boolean,
			created timestamp,
			PRIMARY KEY (session_id))
		WITH compaction = { 'class' :  'LeveledCompactionStrategy'  };
	`, `
		CREATE TABLE IF NOT EXISTS ` + keyspace + `.sessions_by_user (
			user_id text,
			scheduled_at timestamp,
			session_id uuid,
			exchange_id text,
			mentor_id text,
			mentee_id text,
			link text,
			status text,
			skill_offered text,
			PRIMARY KEY (user_id, scheduled_at))
		WITH compaction = { 'class' :  'LeveledCompactionStrategy'  };
	`, `
		CREATE TABLE IF NOT EXISTS ` + keyspace + `.progress_requests (
			request_id uuid,
			exchange_id text,
			mentor_id text,
			mentee_id text,
			next_session int,
			total_sessions int,
			status text,
			created timestamp,
			PRIMARY KEY (request_id))
		WITH compaction = { 'class' :  'LeveledCompactionStrategy'  };
	`, `
		CREATE TABLE IF NOT EXISTS ` + keyspace + `.progress_requests_by_user (
			user_id text,
			created timestamp,
			request_id uuid,
			exchange_id text,
			mentor_id text,
			mentee_id text,
			next_session int,
			total_sessions int,
			status text,
			PRIMARY KEY (user_id, created))
		WITH
		CLUSTERING ORDER BY (created DESC) AND
		compaction = { 'class' :  'LeveledCompactionStrategy'  };
	`} {
		err = global.Session.Query(stmt).Exec()
		errors.HandleFatalError(err)
	}

}

func main() {

	defer global.Session.Close()
	defer global.TaskClient.Close()

	app := fiber.New()
	defer app.Shutdown()

	events.SetDispatcher(socket.Dispatch)
	events.Bridge()

	tasks.StartWorker()

	metrics.Register()
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		if err := http.ListenAndServe(config.Config.MetricsPort, mux); err != nil {
			global.InternalLogger.Println("metrics listener: " + err.Error())
		}
	}()

	routes.SetRoutes(app)

	fmt.Println("Starting server on port: " + config.Config.Port)
	log.Fatal(app.Listen(config.Config.Port))

}
