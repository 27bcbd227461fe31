package config

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"

	"gopkg.in/gcfg.v1"
)

type (
	Config struct {
		MOYSKLAD struct {
			URL         string
			User        string
			Pass        string
			PriceTypeID string
		}
		WOOCOMMERCE struct {
			URL    string
			Key    string
			Secret string
			User   string
			Pass   string
			RPS    int
		}
		PRODUCTSYNC struct {
			Enabled           int
			Mode              string // standard|accelerated
			Timeout           int    // минуты между проходами
			SyncName          int
			SyncDescription   int
			SyncImages        int
			SyncAllImages     int
			SyncModifications int
			TelegramReport    int
		}
		ORDERSYNC struct {
			Enabled         int
			StatusEnabled   int
			StatusFromMS    int
			DelayMinutes    int
			Prefix          string
			OrganizationID  string
			WarehouseID     string
			CustomerGroupID string
		}
		STATUSMAP struct {
			Map []string // "processing:s1"
		}
		WEBHOOK struct {
			URL string
		}
		TELEGRAM struct {
			BotToken string
			ChatID   int64
			Debug    int
		}
		SERVICE struct {
			PORT int
		}
		DBSQLITE struct {
			DB string
		}
		LOG struct {
			Debug int
		}
	}
)

var cfg Config
var once sync.Once

func GetConfig() *Config {
	once.Do(func() {
		err := os.MkdirAll("logs", 0770)
		if err != nil {
			fmt.Println(err)
		}

		file, err := os.OpenFile("logs/config.log", os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0640)
		if err != nil {
			fmt.Println(err)
		}

		multiWriter := io.MultiWriter(file, os.Stdout)

		logger := log.New(multiWriter, "MAIN ", log.Ldate|log.Ltime|log.Lshortfile)

		logger.Print("Config:>Read application configurations")

		err = gcfg.ReadFileInto(&cfg, "./config/config.ini")
		if err != nil {
			logger.Fatalf("Config:>Failed to parse gcfg data: %s", err)
		} else {
			logger.Print("Config:>Config is read")
		}
	})

	return &cfg
}

// StatusMapping разбирает STATUSMAP.Map ("woo-status:ms-state-id") в map
func (c *Config) StatusMapping() map[string]string {
	m := make(map[string]string)
	for _, pair := range c.STATUSMAP.Map {
		parts := strings.SplitN(pair, ":", 2)
		if len(parts) != 2 {
			continue
		}
		wooStatus := strings.TrimSpace(parts[0])
		msStateID := strings.TrimSpace(parts[1])
		if wooStatus == "" || msStateID == "" {
			continue
		}
		m[wooStatus] = msStateID
	}
	return m
}

// ReverseStatusMapping переворачивает таблицу статусов для входящих вебхуков
func (c *Config) ReverseStatusMapping() map[string]string {
	m := make(map[string]string)
	for wooStatus, msStateID := range c.StatusMapping() {
		m[msStateID] = wooStatus
	}
	return m
}
