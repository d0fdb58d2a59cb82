package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  Required values are enforced by must() and a
// missing one causes the program to exit with a fatal log message; booking
// and session policy values carry defaults so a bare deployment behaves
// like the production SeedLink service.
type Config struct {
	Env        string // application environment (e.g. "dev", "prod")
	Port       string // HTTP port to listen on
	DBUser     string // database username
	DBPass     string // database password (optional)
	DBHost     string // database host address
	DBPort     string // database port number
	DBName     string // database name
	JWTSecret  string // secret used to verify identity tokens on the booking API
	CronSecret string // shared secret for the cron trigger endpoints (empty disables the check)

	// Booking policy.
	PickupMinHours   int // earliest allowed pickup, hours from now (window lower bound)
	PickupMaxDays    int // latest allowed pickup, days from now (window upper bound)
	GraceHours       int // hours past the scheduled pickup before a booking expires
	CooldownDays     int // cooldown imposed on a booker whose booking expired unclaimed
	IndividualQuota  int // max outstanding quantity for INDIVIDUAL accounts
	InstitutionQuota int // max outstanding quantity for INSTITUTION accounts

	// USSD session policy.
	SessionIdleMinutes int // minutes of inactivity before a session is invalidated
	MaxInvalidAttempts int // consecutive invalid inputs before lockout
	MaxUssdQuantity    int // largest quantity bookable through the USSD channel
}

// Load reads configuration values from environment variables and returns a
// Config.  Database and server settings are required; policy values fall
// back to the documented defaults when unset.
func Load() Config {
	return Config{
		Env:        must("APP_ENV"),
		Port:       must("APP_PORT"),
		DBUser:     must("DB_USER"),
		DBPass:     os.Getenv("DB_PASS"), // empty allowed
		DBHost:     must("DB_HOST"),
		DBPort:     must("DB_PORT"),
		DBName:     must("DB_NAME"),
		JWTSecret:  must("JWT_SECRET"),
		CronSecret: os.Getenv("CRON_SECRET"),

		PickupMinHours:   envInt("BOOKING_PICKUP_MIN_HOURS", 48),
		PickupMaxDays:    envInt("BOOKING_PICKUP_MAX_DAYS", 14),
		GraceHours:       envInt("BOOKING_EXPIRE_GRACE_HOURS", 24),
		CooldownDays:     envInt("BOOKING_COOLDOWN_DAYS", 31),
		IndividualQuota:  envInt("BOOKING_QUOTA_INDIVIDUAL", 5),
		InstitutionQuota: envInt("BOOKING_QUOTA_INSTITUTION", 50),

		SessionIdleMinutes: envInt("USSD_SESSION_TIMEOUT_MINUTES", 5),
		MaxInvalidAttempts: envInt("USSD_MAX_INVALID_ATTEMPTS", 3),
		MaxUssdQuantity:    envInt("USSD_MAX_SEEDLING_QUANTITY", 5),
	}
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an integer.
// If conversion fails, the application logs a fatal error and exits.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}
