package constants

import "time"

const (
	AppName            = "confsched"
	AppTitle           = "Youth Conference Schedule API"
	DefaultKeyringUser = "database-connection"
	Version            = "v0.2.0"

	// Storage
	DefaultConfigPath   = "./confsched.yaml"
	DefaultDataDir      = "./data"
	ScheduleFileName    = "schedule.json"
	OutlinesDirName     = "outlines"
	OutlinesURLPrefix   = "/outlines/"
	LogsDirName         = "logs"
	LogFileName         = "confsched.log"
	ScheduleDocumentKey = "schedule"

	// Server
	DefaultListen       = "0.0.0.0:8000"
	ServerReadTimeout   = 30 * time.Second
	ServerWriteTimeout  = 60 * time.Second
	ServerShutdownGrace = 5 * time.Second
	LockfileName        = "confsched-serve.lock"

	// Backup constants
	MaxBackups        = 14
	BackupDirName     = "backups"
	BackupFilePrefix  = "confsched-"
	BackupFileSuffix  = ".json"
	DefaultBackupCron = "0 3 * * *"

	// Environment variables
	EnvDBConnection = "CONFSCHED_DB_CONNECTION"
)
