package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var (
	TLS_DOMAINS  = "" // e.g. "example.com,example2.com"
	CORS_ORIGINS = "" // comma separated, empty allows all
	BIND_ADDRESS = "0.0.0.0:8080"
	TMP_DIR      = "/tmp" // Local copy of the state database and narration scratch dirs live here
	DEBUG_MODE   = true

	// State store. The SQLite file is canonical in STATE_BUCKET/STATE_OBJECT and only cached locally
	STATE_STORAGE_TYPE = "gcs" // gcs, s3 or file
	STATE_BUCKET       = "phankar"
	STATE_OBJECT       = "artisan_database/app.db"
	STATE_DIR          = ""         // Root directory for the "file" storage type
	STATE_PUBLISH_MODE = "snapshot" // snapshot publishes after every write, release once per request

	IMAGE_BUCKET    = "phankar"
	IMAGE_FOLDER    = "artisan_images"
	S3_REGION       = "us-east-1"
	S3_ENDPOINT     = ""
	S3_KEY          = ""
	S3_SECRET       = ""
	GCP_CREDENTIALS = "" // Service account JSON or a path to it. Application default credentials otherwise
	GCP_PROJECT     = ""

	CLASSIFIER_URL     = "http://localhost:8001"
	CLASSIFIER_TIMEOUT = 600 * time.Second
	AGENT_URL          = "http://localhost:8002"
	AGENT_TIMEOUT      = 15 * time.Minute
	GEMINI_API_KEY     = ""
	GEMINI_MODEL       = "gemini-1.5-flash"

	HOLIDAYS_FILE         = "data/holidays.json"
	HOLIDAY_COUNT         = 10
	INVENTORY_REGION      = "Uttar Pradesh"
	DEFAULT_TARGET_REGION = "GLOBAL"
	VOICES_FILE           = "" // YAML list of narration voices, first one is primary
	WORKER_POOL_SIZE      = 4
	FONT_FILE             = "" // TTF used for artifacts, Go Regular if empty
)

func init() {
	// A missing .env is normal in production
	_ = godotenv.Load()

	readEnvString("TLS_DOMAINS", &TLS_DOMAINS)
	readEnvString("CORS_ORIGINS", &CORS_ORIGINS)
	readEnvString("BIND_ADDRESS", &BIND_ADDRESS)
	readEnvString("TMP_DIR", &TMP_DIR)
	readEnvBool("DEBUG_MODE", &DEBUG_MODE)
	readEnvString("STATE_STORAGE_TYPE", &STATE_STORAGE_TYPE)
	readEnvString("STATE_BUCKET", &STATE_BUCKET)
	readEnvString("STATE_OBJECT", &STATE_OBJECT)
	readEnvString("STATE_DIR", &STATE_DIR)
	readEnvString("STATE_PUBLISH_MODE", &STATE_PUBLISH_MODE)
	readEnvString("IMAGE_BUCKET", &IMAGE_BUCKET)
	readEnvString("IMAGE_FOLDER", &IMAGE_FOLDER)
	readEnvString("S3_REGION", &S3_REGION)
	readEnvString("S3_ENDPOINT", &S3_ENDPOINT)
	readEnvString("S3_KEY", &S3_KEY)
	readEnvString("S3_SECRET", &S3_SECRET)
	readEnvString("GCP_CREDENTIALS", &GCP_CREDENTIALS)
	readEnvString("GCP_PROJECT", &GCP_PROJECT)
	readEnvString("CLASSIFIER_URL", &CLASSIFIER_URL)
	readEnvDuration("CLASSIFIER_TIMEOUT", &CLASSIFIER_TIMEOUT)
	readEnvString("AGENT_URL", &AGENT_URL)
	readEnvDuration("AGENT_TIMEOUT", &AGENT_TIMEOUT)
	readEnvString("GEMINI_API_KEY", &GEMINI_API_KEY)
	readEnvString("GEMINI_MODEL", &GEMINI_MODEL)
	readEnvString("HOLIDAYS_FILE", &HOLIDAYS_FILE)
	readEnvInt("HOLIDAY_COUNT", &HOLIDAY_COUNT)
	readEnvString("INVENTORY_REGION", &INVENTORY_REGION)
	readEnvString("DEFAULT_TARGET_REGION", &DEFAULT_TARGET_REGION)
	readEnvString("VOICES_FILE", &VOICES_FILE)
	readEnvInt("WORKER_POOL_SIZE", &WORKER_POOL_SIZE)
	readEnvString("FONT_FILE", &FONT_FILE)
}

func readEnvString(name string, value *string) {
	v := os.Getenv(name)
	if v == "" {
		return
	}
	*value = v
}

func readEnvBool(name string, value *bool) {
	v := strings.ToLower(os.Getenv(name))
	if v == "true" || v == "1" || v == "yes" || v == "on" {
		*value = true
	} else if v == "false" || v == "0" || v == "no" || v == "off" {
		*value = false
	}
}

func readEnvInt(name string, value *int) {
	v := os.Getenv(name)
	if v == "" {
		return
	}
	f, err := strconv.Atoi(v)
	if err != nil {
		return
	}
	*value = f
}

// readEnvDuration accepts Go durations ("90s", "15m") or a plain number of seconds
func readEnvDuration(name string, value *time.Duration) {
	v := os.Getenv(name)
	if v == "" {
		return
	}
	if d, err := time.ParseDuration(v); err == nil {
		*value = d
		return
	}
	if secs, err := strconv.ParseFloat(v, 64); err == nil {
		*value = time.Duration(secs * float64(time.Second))
	}
}
