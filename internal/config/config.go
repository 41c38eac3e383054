package config

import (
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config основная конфигурация сервиса
type Config struct {
	Service ServiceConfig `yaml:"service"`
	Logging LoggingConfig `yaml:"logging"`
	MongoDB MongoDBConfig `yaml:"mongodb"`
	Redis   RedisConfig   `yaml:"redis"`
	Cache   CacheConfig   `yaml:"cache"`
	Dataset DatasetConfig `yaml:"dataset"`
}

// ServiceConfig конфигурация сервиса
type ServiceConfig struct {
	Name     string `yaml:"name"`
	HTTPPort int    `yaml:"http_port"`
}

// LoggingConfig конфигурация логирования
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MongoDBConfig конфигурация MongoDB
type MongoDBConfig struct {
	URI        string `yaml:"uri"`
	Database   string `yaml:"database"`
	Collection string `yaml:"collection"`
}

// RedisConfig конфигурация Redis
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// CacheConfig конфигурация кэширования предсказаний
type CacheConfig struct {
	PredictionTTL Duration `yaml:"prediction_ttl"`
}

// Duration длительность в формате time.ParseDuration ("10m", "1h30m")
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// Std возвращает стандартный time.Duration
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// DatasetConfig конфигурация импорта набора данных
type DatasetConfig struct {
	WorkbookPath   string `yaml:"workbook_path"`
	SourceSheet    string `yaml:"source_sheet"`
	ClassifiedPath string `yaml:"classified_path"`
}

// Load загружает конфигурацию
func Load(configPath string) (*Config, error) {
	config := &Config{}

	// Загрузка из файла если указан путь
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, err
		}

		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, err
		}
	}

	// Переопределение из переменных окружения
	loadFromEnv(config)

	// Установка значений по умолчанию
	setDefaults(config)

	return config, nil
}

// loadFromEnv загружает конфигурацию из переменных окружения
func loadFromEnv(config *Config) {
	if val := os.Getenv("SERVICE_NAME"); val != "" {
		config.Service.Name = val
	}

	if val := os.Getenv("HTTP_PORT"); val != "" {
		if port, err := strconv.Atoi(val); err == nil {
			config.Service.HTTPPort = port
		}
	}

	if val := os.Getenv("LOG_LEVEL"); val != "" {
		config.Logging.Level = val
	}

	if val := os.Getenv("LOG_FORMAT"); val != "" {
		config.Logging.Format = val
	}

	if val := os.Getenv("MONGODB_URI"); val != "" {
		config.MongoDB.URI = val
	}

	if val := os.Getenv("MONGODB_DATABASE"); val != "" {
		config.MongoDB.Database = val
	}

	if val := os.Getenv("REDIS_URL"); val != "" {
		config.Redis.URL = val
		config.Redis.Enabled = true
	}

	if val := os.Getenv("REDIS_PASSWORD"); val != "" {
		config.Redis.Password = val
	}

	if val := os.Getenv("REDIS_DB"); val != "" {
		if db, err := strconv.Atoi(val); err == nil {
			config.Redis.DB = db
		}
	}

	if val := os.Getenv("DATASET_WORKBOOK_PATH"); val != "" {
		config.Dataset.WorkbookPath = val
	}
}

// setDefaults устанавливает значения по умолчанию
func setDefaults(config *Config) {
	if config.Service.Name == "" {
		config.Service.Name = "maintenance-service"
	}

	if config.Service.HTTPPort == 0 {
		config.Service.HTTPPort = 8080
	}

	if config.Logging.Level == "" {
		config.Logging.Level = "info"
	}

	if config.Logging.Format == "" {
		config.Logging.Format = "text"
	}

	if config.MongoDB.URI == "" {
		config.MongoDB.URI = "mongodb://localhost:27017"
	}

	if config.MongoDB.Database == "" {
		config.MongoDB.Database = "predmaint"
	}

	if config.MongoDB.Collection == "" {
		config.MongoDB.Collection = "maintenance_records"
	}

	if config.Cache.PredictionTTL == 0 {
		config.Cache.PredictionTTL = Duration(10 * time.Minute)
	}

	if config.Dataset.SourceSheet == "" {
		config.Dataset.SourceSheet = "Sheet1"
	}

	if config.Dataset.ClassifiedPath == "" {
		config.Dataset.ClassifiedPath = "classified_data_with_sheets.xlsx"
	}
}
