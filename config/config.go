package config

// Config file (global)
var Config JSONConfig

// JSONConfig structure based on config.json
type JSONConfig struct {
	Origin      string       `json:"origin"`
	Port        string       `json:"port"`
	Version     string       `json:"version"`
	MetricsPort string       `json:"metricsPort"`
	EmailFrom   string       `json:"emailFrom"`
	SMTP        SMTPConfig   `json:"smtp"`
	Redis       RedisConfig  `json:"redis"`
	Scylla      ScyllaConfig `json:"scylla"`
	MinIO       MinIOConfig  `json:"minIO"`
	Tasks       TasksConfig  `json:"tasks"`
}

// SMTPConfig structure based on smtp part of config.json
type SMTPConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
}

// RedisConfig structure is the config for the redis connection
type RedisConfig struct {
	Addr     string `json:"addr"`
	Password string `json:"password"`
	DB       int    `json:"db"`
}

// ScyllaConfig structure is the config for the scylla connection
type ScyllaConfig struct {
	Addr     string `json:"addr"`
	Keyspace string `json:"keyspace"`
}

// MinIOConfig structure is the config for the MinIO connection
type MinIOConfig struct {
	Addr      string `json:"addr"`
	User      string `json:"user"`
	Password  string `json:"password"`
	PublicURL string `json:"publicURL"`
}

// TasksConfig structure is the config for the background task worker
type TasksConfig struct {
	Concurrency int `json:"concurrency"`
}
