package constants

import "time"

// Echo context keys
const (
	ContextTokenData = "token_data"
	ContextInstance  = "instance"
)

// Token scopes
const (
	ScopeTokenParticipant = "participant"
	ScopeTokenAdmin       = "instance_admin"
)

// Database pool
const (
	DatabaseMaxOpenConns    = 25
	DatabaseMaxIdleConns    = 10
	DatabaseConnMaxLifetime = 5 // minutes
	DatabaseSSLMode         = "disable"
)

// Timeouts
const (
	DefaultTimeout        = 10 * time.Second
	DefaultRequestTimeout = 5 * time.Second
	ShutdownTimeout       = 15 * time.Second
)

// Redis keys
const (
	RedisKeyJoinAttempt    = "join_attempt:%s:%s" // instance id, client ip
	RedisKeyTokenBlacklist = "token_blacklist:%s"
	RedisChannelInstance   = "instance:%s:events"
)

// Auth
const (
	MaxJoinAttempts = 5
	BlockDuration   = 15 * time.Minute
)

// Dates
const (
	DateKeyLayout = "2006-01-02"
)

// Pagination
const (
	DefaultPageNumber = 1
	DefaultPageSize   = 50
	MaxPageSize       = 200
)

// Background tasks
const (
	TaskInstanceExport  = "instance:export"
	TaskInstanceCleanup = "instance:cleanup"
	QueueDefault        = "default"
)
