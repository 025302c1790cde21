package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config es la configuración completa del servicio.
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	API         APIConfig         `yaml:"api"`
	Storage     StorageConfig     `yaml:"storage"`
	Log         LogConfig         `yaml:"log"`
	Recommender RecommenderConfig `yaml:"recommender"`
}

// ServerConfig controla el servidor HTTP.
type ServerConfig struct {
	Host                  string `yaml:"host"`
	Port                  int    `yaml:"port"`
	ReadTimeoutSeconds    int    `yaml:"read_timeout_seconds"`
	WriteTimeoutSeconds   int    `yaml:"write_timeout_seconds"`
	IdleTimeoutSeconds    int    `yaml:"idle_timeout_seconds"`
	RequestTimeoutSeconds int    `yaml:"request_timeout_seconds"`
}

// APIConfig contiene los base URLs de las APIs de Polymarket.
type APIConfig struct {
	DataBase  string `yaml:"data_base"`
	GammaBase string `yaml:"gamma_base"`
}

// StorageConfig controla dónde se persisten los datos.
type StorageConfig struct {
	DSN string `yaml:"dsn"` // ruta al archivo SQLite, o ":memory:"
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// RecommenderConfig controla el scoring y la ingesta de actividad.
type RecommenderConfig struct {
	ActivityLimit int           `yaml:"activity_limit"`
	Weights       WeightsConfig `yaml:"weights"`
}

// WeightsConfig expone los pesos del score en el YAML. Un peso en cero
// se reemplaza por el default, así que el YAML puede sobreescribir solo
// algunos.
type WeightsConfig struct {
	TagSimilarity float64 `yaml:"tag_similarity"`
	CategoryMatch float64 `yaml:"category_match"`
	HorizonMatch  float64 `yaml:"horizon_match"`
	RiskMatch     float64 `yaml:"risk_match"`
	Liquidity     float64 `yaml:"liquidity"`
	Momentum      float64 `yaml:"momentum"`
	Novelty       float64 `yaml:"novelty"`
}

// Load carga la configuración desde el archivo YAML y el archivo .env si
// existe. Si el YAML no existe se arranca con los defaults; cualquier
// otro error de lectura sí es fatal.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
		}
	case os.IsNotExist(err):
		// sin archivo: solo defaults y env
	default:
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	return &cfg, nil
}

// ReadTimeout devuelve el read timeout como time.Duration.
func (c *Config) ReadTimeout() time.Duration {
	return time.Duration(c.Server.ReadTimeoutSeconds) * time.Second
}

// WriteTimeout devuelve el write timeout como time.Duration.
func (c *Config) WriteTimeout() time.Duration {
	return time.Duration(c.Server.WriteTimeoutSeconds) * time.Second
}

// IdleTimeout devuelve el idle timeout como time.Duration.
func (c *Config) IdleTimeout() time.Duration {
	return time.Duration(c.Server.IdleTimeoutSeconds) * time.Second
}

// RequestTimeout devuelve el timeout por request como time.Duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Server.RequestTimeoutSeconds) * time.Second
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("POLYREC_DSN"); v != "" {
		cfg.Storage.DSN = v
	}
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
func setDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 4000
	}
	if cfg.Server.ReadTimeoutSeconds <= 0 {
		cfg.Server.ReadTimeoutSeconds = 15
	}
	if cfg.Server.WriteTimeoutSeconds <= 0 {
		cfg.Server.WriteTimeoutSeconds = 30
	}
	if cfg.Server.IdleTimeoutSeconds <= 0 {
		cfg.Server.IdleTimeoutSeconds = 60
	}
	if cfg.Server.RequestTimeoutSeconds <= 0 {
		cfg.Server.RequestTimeoutSeconds = 30
	}
	if cfg.API.DataBase == "" {
		cfg.API.DataBase = "https://data-api.polymarket.com"
	}
	if cfg.API.GammaBase == "" {
		cfg.API.GammaBase = "https://gamma-api.polymarket.com"
	}
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "polyrec.db"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
	if cfg.Recommender.ActivityLimit <= 0 {
		cfg.Recommender.ActivityLimit = 1000
	}
	w := &cfg.Recommender.Weights
	if w.TagSimilarity <= 0 {
		w.TagSimilarity = 0.25
	}
	if w.CategoryMatch <= 0 {
		w.CategoryMatch = 0.15
	}
	if w.HorizonMatch <= 0 {
		w.HorizonMatch = 0.20
	}
	if w.RiskMatch <= 0 {
		w.RiskMatch = 0.15
	}
	if w.Liquidity <= 0 {
		w.Liquidity = 0.10
	}
	if w.Momentum <= 0 {
		w.Momentum = 0.10
	}
	if w.Novelty <= 0 {
		w.Novelty = 0.05
	}
}
