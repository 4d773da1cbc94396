package config

import (
	"database/sql"
	"log"
	"os"
	"strconv"

	_ "github.com/lib/pq"
)

type Config struct {
	DB *sql.DB // nil when no database is configured

	EncodingsFile  string
	AttendanceDir  string
	MatchTolerance float64
	CascadeFile    string
	EmbedderModel  string

	QRSecret   string
	MQTTBroker string
	AutoStop   bool

	Port string
}

var AppConfig *Config

// Init reads the environment and opens the optional session-registry
// database. Unlike most of the stack, the database is not required: the
// attendance tool must keep working on a camera box with no Postgres around,
// so a missing or unreachable database only disables session history.
func Init() {
	cfg := &Config{
		EncodingsFile:  envOr("ENCODINGS_FILE", "encodings.bin"),
		AttendanceDir:  envOr("ATTENDANCE_DIR", "."),
		MatchTolerance: envFloat("MATCH_TOLERANCE", 0.5),
		CascadeFile:    envOr("CASCADE_FILE", "haarcascade_frontalface_default.xml"),
		EmbedderModel:  envOr("EMBEDDER_MODEL", "face_embedder.onnx"),
		QRSecret:       envOr("QR_SECRET", "face-attendance-secret-key-2025"),
		MQTTBroker:     os.Getenv("MQTT_BROKER"),
		AutoStop:       os.Getenv("AUTO_STOP_SESSIONS") == "true",
		Port:           envOr("PORT", "5000"),
	}

	if dsn := registryDSN(); dsn != "" {
		db, err := sql.Open("postgres", dsn)
		if err != nil {
			log.Printf("Session registry disabled: %v", err)
		} else {
			db.SetMaxOpenConns(25)
			db.SetMaxIdleConns(5)
			if err := db.Ping(); err != nil {
				log.Printf("Session registry disabled, database unreachable: %v", err)
				db.Close()
			} else {
				cfg.DB = db
				log.Println("Session registry database connected")
			}
		}
	} else {
		log.Println("No database configured, session registry disabled")
	}

	AppConfig = cfg
}

func registryDSN() string {
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		return dsn
	}
	if os.Getenv("LOCAL_DB") == "true" {
		return "host=localhost port=5432 user=postgres dbname=attendance sslmode=disable"
	}
	return ""
}

func GetDB() *sql.DB {
	return AppConfig.DB
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Printf("Invalid %s=%q, using %v", key, v, fallback)
		return fallback
	}
	return f
}
