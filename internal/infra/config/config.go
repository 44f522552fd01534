package config

import "os"

// Config holds the application's environment-driven settings.
type Config struct {
	Port     string
	GCPCreds string

	FirestoreProjectID       string
	FirestoreCredentialsFile string
	FirebaseProjectID        string

	// Web API key for the Firebase Auth REST endpoints. May also be resolved
	// from Secret Manager via FirebaseAPIKeySecret.
	FirebaseAPIKey       string
	FirebaseAPIKeySecret string

	GCSBucket string

	// CORS allowlist for the storefront frontend, comma separated.
	AllowedOrigins string

	// Transactional mail. SendGridKeySecret wins over SendGridAPIKey when set.
	SendGridAPIKey    string
	SendGridKeySecret string
	MailFromAddress   string

	// Optional Postgres mirror for order reporting. Empty DSN disables it.
	DatabaseURL string

	// Directory for persisted session blobs.
	SessionDir string
}

// Load reads the environment and returns the Config.
func Load() *Config {
	defaultProject := getenvDefault("GCP_PROJECT_ID", "storefront-prod")

	cfg := &Config{
		Port:     getenvDefault("PORT", "8080"),
		GCPCreds: os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),

		FirestoreProjectID:       getenvDefault("FIRESTORE_PROJECT_ID", defaultProject),
		FirestoreCredentialsFile: os.Getenv("FIRESTORE_CREDENTIALS_FILE"),
		FirebaseProjectID:        getenvDefault("FIREBASE_PROJECT_ID", defaultProject),

		FirebaseAPIKey:       os.Getenv("FIREBASE_API_KEY"),
		FirebaseAPIKeySecret: os.Getenv("FIREBASE_API_KEY_SECRET"),

		GCSBucket: os.Getenv("GCS_BUCKET"),

		AllowedOrigins: getenvDefault("ALLOWED_ORIGINS", "http://localhost:5173"),

		SendGridAPIKey:    os.Getenv("SENDGRID_API_KEY"),
		SendGridKeySecret: os.Getenv("SENDGRID_KEY_SECRET"),
		MailFromAddress:   getenvDefault("MAIL_FROM_ADDRESS", "no-reply@storefront.example.com"),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		SessionDir: getenvDefault("SESSION_DIR", "/tmp/storefront-sessions"),
	}

	return cfg
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
