package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	log "github.com/sirupsen/logrus"
)

type Room string // either a room id (!abc:server) or an alias (#abc:server)

func (r Room) IsAlias() bool {
	return strings.HasPrefix(string(r), "#")
}

func (r Room) String() string {
	return string(r)
}

type MatrixConfig struct {
	SourceRoom Room `toml:"source_room"`
	TargetRoom Room `toml:"target_room"`

	HomeServer  string
	Username    string
	Password    string
	AccessToken string
}

type RelayConfig struct {
	KeepAliveIntervalSeconds int `toml:"keepalive_interval"`
}

func (c *RelayConfig) KeepAliveInterval() time.Duration {
	return time.Duration(c.KeepAliveIntervalSeconds) * time.Second
}

type WebConfig struct {
	Port int `toml:"port"`
}

type Config struct {
	Matrix *MatrixConfig `toml:"matrix"`
	Relay  *RelayConfig  `toml:"relay"`
	Web    *WebConfig    `toml:"web"`
}

func (c *Config) getenv(name string) string {
	return os.Getenv(name)
}

func (c *Config) Load() {
	// load config.toml
	file, err := os.ReadFile("config/config.toml")
	if err != nil {
		log.Fatalf("Error reading config.toml: %v", err)
		return
	}
	if err := toml.Unmarshal(file, c); err != nil {
		log.Fatalf("Error decoding TOML: %s", err)
		return
	}
	if c.Matrix == nil {
		log.Fatalf("Missing [matrix] section in config.toml")
		return
	}
	if c.Relay == nil {
		c.Relay = &RelayConfig{}
	}
	if c.Web == nil {
		c.Web = &WebConfig{}
	}
	if c.Relay.KeepAliveIntervalSeconds <= 0 {
		c.Relay.KeepAliveIntervalSeconds = 180
	}
	log.Infof("Loaded config: %+v", c)

	// load .env
	err = godotenv.Load()
	if err != nil {
		log.Warnf("[Expected in docker] Error loading .env file: %v", err)
	}
	c.Matrix.HomeServer = c.getenv("MATRIX_HOMESERVER")
	c.Matrix.Username = c.getenv("MATRIX_USERNAME")
	c.Matrix.Password = c.getenv("MATRIX_PASSWORD")
	c.Matrix.AccessToken = c.getenv("MATRIX_ACCESS_TOKEN")

	if c.Matrix.HomeServer == "" {
		log.Fatalf("No matrix homeserver provided")
	}
	if c.Matrix.AccessToken == "" && (c.Matrix.Username == "" || c.Matrix.Password == "") {
		log.Fatalf("Incomplete matrix credentials provided")
	}
	if c.Matrix.SourceRoom == "" || c.Matrix.TargetRoom == "" {
		log.Fatalf("Both a source and a target room must be configured")
	}
	if c.Matrix.SourceRoom == c.Matrix.TargetRoom {
		log.Fatalf("Source and target room must differ")
	}

	// the host platform assigns the web port via $PORT
	if port := c.getenv("PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			log.Fatalf("Invalid PORT %q: %v", port, err)
		}
		c.Web.Port = p
	}
	if c.Web.Port == 0 {
		c.Web.Port = 10000
	}
}
