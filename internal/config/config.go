package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Endpoint configures one remote API.
type Endpoint struct {
	BaseURL           string  `yaml:"base_url"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	DetailConcurrency int     `yaml:"detail_concurrency"`
}

type Config struct {
	App struct {
		DataDir    string `yaml:"data_dir"`
		StatusPort int    `yaml:"status_port"`
	} `yaml:"app"`

	Source      Endpoint `yaml:"source"`
	Destination Endpoint `yaml:"destination"`

	Transfer struct {
		Concurrency int           `yaml:"concurrency"`
		SettleDelay time.Duration `yaml:"settle_delay"`
	} `yaml:"transfer"`

	Schedule struct {
		Interval time.Duration `yaml:"interval"`
	} `yaml:"schedule"`
}

func Default() Config {
	var cfg Config
	cfg.App.StatusPort = 38472
	cfg.Source = Endpoint{
		BaseURL:           "https://api.startupjobs.cz/company",
		RequestsPerSecond: 10,
		DetailConcurrency: 20,
	}
	cfg.Destination = Endpoint{
		BaseURL:           "https://api.resumatorapi.com/v1",
		RequestsPerSecond: 8,
		DetailConcurrency: 30,
	}
	cfg.Transfer.Concurrency = 10
	cfg.Transfer.SettleDelay = 2 * time.Second
	cfg.Schedule.Interval = 15 * time.Minute
	return cfg
}

// Load reads path over the defaults, so keys missing from the file keep
// their default values.
func Load(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	err = yaml.Unmarshal(b, &cfg)
	return cfg, err
}
