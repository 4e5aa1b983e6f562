package utils

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func LoadEnv() {
	err := godotenv.Load()
	if err != nil {
		log.Println("ℹ️  No .env file found, continuing...")
	}
}

// GetDatabaseURL resolves the connection string, environment first,
// config file second.
func GetDatabaseURL() string {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		url = viper.GetString("database.url")
	}
	return url
}
