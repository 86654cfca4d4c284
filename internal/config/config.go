package config

import (
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

const envPrefix = "BUDGET_"

type Application struct {
	Host          string         `koanf:"host"`
	Port          int            `koanf:"port"`
	Database      Database       `koanf:"db"`
	Budget        Budget         `koanf:"budget"`
	ExchangeRates []ExchangeRate `koanf:"exchangerates"`
}

type Database struct {
	Host   string `koanf:"host"`
	Port   int    `koanf:"port"`
	User   string `koanf:"user"`
	Pass   string `koanf:"pass"`
	Name   string `koanf:"name"`
	Schema string `koanf:"schema"`
}

type Budget struct {
	// DefaultCurrency is the currency amounts are stored in.
	DefaultCurrency string `koanf:"defaultcurrency"`
	// SyncTolerance is the drift a system budget may have from its target before it is updated.
	SyncTolerance string `koanf:"synctolerance"`
}

type ExchangeRate struct {
	From string `koanf:"from"`
	To   string `koanf:"to"`
	Rate string `koanf:"rate"`
}

// Tolerance returns the parsed sync tolerance, or zero when it is not a number.
func (b Budget) Tolerance() decimal.Decimal {
	tolerance, err := decimal.NewFromString(b.SyncTolerance)
	if err != nil {
		log.Warnf("invalid budget sync tolerance %q, using default", b.SyncTolerance)
		return decimal.Zero
	}
	return tolerance
}

func Default() Application {
	return Application{
		Host: "http://localhost:3000",
		Port: 8181,
		Database: Database{
			Host:   "localhost",
			Port:   5432,
			User:   "budgetwise",
			Pass:   "",
			Name:   "budgetwise",
			Schema: "budgetwise",
		},
		Budget: Budget{
			DefaultCurrency: "USD",
			SyncTolerance:   "0.01",
		},
	}
}

func Load(path string) (Application, error) {
	var k = koanf.New(".")

	err := k.Load(structs.Provider(Default(), "koanf"), nil)
	if err != nil {
		log.Errorf("error loading config from structs: %v", err)
		return Application{}, err
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if os.IsNotExist(err) {
			log.Infof("Config file not found at %s, using defaults and environment variables", path)
		} else {
			log.Errorf("error loading config from YAML: %v", err)
			return Application{}, err
		}
	} else {
		log.Infof("Loaded configuration from file: %s", path)
	}

	err = k.Load(env.Provider(".", env.Opt{
		Prefix: envPrefix,
		TransformFunc: func(k, v string) (string, any) {
			k = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, envPrefix)), "_", ".")
			return k, v
		},
	}), nil)
	if err != nil {
		log.Errorf("error loading config from envs: %v", err)
		return Application{}, err
	}

	var app Application
	if err := k.Unmarshal("", &app); err != nil {
		return Application{}, err
	}

	return app, nil
}
