package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"
)

const (
	defaultDatabasePath       = "roster.db"
	defaultBusinessTimezone   = "Asia/Tokyo"
	defaultTriggerHour        = 10
	defaultSweepIntervalSecs  = 60
	defaultRosterIntervalSecs = 6 * 60 * 60
	defaultCleanupHours       = 24
	defaultRetentionDays      = 90
	defaultFairnessWindowDays = 49
)

type Config struct {
	// database path
	DatabasePath string

	// business-zone settings for trigger resolution
	BusinessTimezone string
	Location         *time.Location
	TriggerHour      int

	// background task intervals
	SweepInterval   time.Duration
	RosterInterval  time.Duration
	CleanupInterval time.Duration

	// request cleanup retention and fairness lookback
	RetentionDays      int
	FairnessWindowDays int

	// replication sink endpoint; empty disables the HTTP client
	ReplicationURL string
}

func getEnvOrDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvIntOrDefault(envVar string, defaultVal int) int {
	valStr := os.Getenv(envVar)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(valStr)
	if err != nil || val <= 0 {
		log.Printf("Warning: Invalid %s '%s'. Using default %d. Error: %v", envVar, valStr, defaultVal, err)
		return defaultVal
	}
	return val
}

func LoadConfig() (Config, error) {
	dbPath := getEnvOrDefault("DATABASE_PATH", defaultDatabasePath)

	tzName := getEnvOrDefault("BUSINESS_TIMEZONE", defaultBusinessTimezone)
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return Config{}, fmt.Errorf("failed to load business timezone '%s': %w", tzName, err)
	}

	triggerHour := getEnvIntOrDefault("TRIGGER_HOUR", defaultTriggerHour)
	if triggerHour > 23 {
		log.Printf("Warning: TRIGGER_HOUR %d out of range, using default %d", triggerHour, defaultTriggerHour)
		triggerHour = defaultTriggerHour
	}

	sweepSecs := getEnvIntOrDefault("SWEEP_INTERVAL_SECONDS", defaultSweepIntervalSecs)
	rosterSecs := getEnvIntOrDefault("ROSTER_INTERVAL_SECONDS", defaultRosterIntervalSecs)
	cleanupHours := getEnvIntOrDefault("CLEANUP_INTERVAL_HOURS", defaultCleanupHours)
	retentionDays := getEnvIntOrDefault("REQUEST_RETENTION_DAYS", defaultRetentionDays)
	fairnessDays := getEnvIntOrDefault("FAIRNESS_WINDOW_DAYS", defaultFairnessWindowDays)

	cfg := Config{
		DatabasePath:       dbPath,
		BusinessTimezone:   tzName,
		Location:           loc,
		TriggerHour:        triggerHour,
		SweepInterval:      time.Duration(sweepSecs) * time.Second,
		RosterInterval:     time.Duration(rosterSecs) * time.Second,
		CleanupInterval:    time.Duration(cleanupHours) * time.Hour,
		RetentionDays:      retentionDays,
		FairnessWindowDays: fairnessDays,
		ReplicationURL:     os.Getenv("REPLICATION_URL"),
	}

	return cfg, nil
}
