package main

import (
	"flag"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/vancomm/minefield/internal/config"
	"github.com/vancomm/minefield/internal/database"
)

func main() {
	log := logrus.New()

	var configPath string
	flag.StringVar(&configPath, "config", "", "config file path, optional when DATABASE_URL is set")
	flag.Parse()

	c, err := config.Read(configPath)
	if err != nil {
		log.Fatal(err)
	}
	if c.Development() {
		log.SetFormatter(&logrus.TextFormatter{ForceColors: true})
	} else {
		log.SetFormatter(&logrus.JSONFormatter{})
	}

	version, dirty, err := database.Migrate(c.DatabaseURL())
	if err != nil {
		log.WithError(err).Error("migration failed")
		os.Exit(1)
	}
	log.WithFields(logrus.Fields{
		"version": version,
		"dirty":   dirty,
	}).Info("migration successful")
}
