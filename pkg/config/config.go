package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config agrupa la configuración del cliente (lectura vía Viper desde env y opcionalmente archivo).
type Config struct {
	App      AppConfig
	API      APIConfig
	Realtime RealtimeConfig
	Store    StoreConfig
	Camera   CameraConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env      string // development, staging, production
	Name     string
	LogLevel string
}

// APIConfig configuración del servicio remoto SyncVault.
type APIConfig struct {
	BaseURL string        // ej. http://localhost:8000
	Timeout time.Duration // timeout por petición HTTP
}

// WSBaseURL deriva la base websocket de la base HTTP (http -> ws, https -> wss).
func (c APIConfig) WSBaseURL() string {
	switch {
	case strings.HasPrefix(c.BaseURL, "https"):
		return "wss" + strings.TrimPrefix(c.BaseURL, "https")
	case strings.HasPrefix(c.BaseURL, "http"):
		return "ws" + strings.TrimPrefix(c.BaseURL, "http")
	}
	return c.BaseURL
}

// RealtimeConfig parámetros de reconexión del canal websocket.
type RealtimeConfig struct {
	ReconnectDelay time.Duration // delay inicial tras un cierre
	MaxDelay       time.Duration // tope del backoff exponencial
}

// StoreConfig ubicación de la base SQLite local (token, perfil, historial de escaneos).
type StoreConfig struct {
	Path string
}

// CameraConfig parámetros de captura de video.
type CameraConfig struct {
	Device string // ej. /dev/video0
	Width  int
	Height int
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde archivo).
// Las env vars tienen prioridad. Nombres esperados: SYNCVAULT_API_URL, SYNCVAULT_ENV, etc.
func Load() (*Config, error) {
	v := viper.New()

	// Opcional: archivo de configuración en el directorio actual o en ~/.syncvault
	v.SetConfigName("syncvault")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".syncvault"))
	}
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.SetEnvPrefix("SYNCVAULT")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{
		App: AppConfig{
			Env:      getString(v, "ENV", "production"),
			Name:     getString(v, "APP_NAME", "syncvault"),
			LogLevel: getString(v, "LOG_LEVEL", "warn"),
		},
		API: APIConfig{
			BaseURL: strings.TrimRight(getString(v, "API_URL", "http://localhost:8000"), "/"),
			Timeout: time.Duration(getInt(v, "API_TIMEOUT_SECONDS", 15)) * time.Second,
		},
		Realtime: RealtimeConfig{
			ReconnectDelay: time.Duration(getInt(v, "WS_RECONNECT_SECONDS", 3)) * time.Second,
			MaxDelay:       time.Duration(getInt(v, "WS_MAX_DELAY_SECONDS", 60)) * time.Second,
		},
		Store: StoreConfig{
			Path: getString(v, "STORE_PATH", defaultStorePath()),
		},
		Camera: CameraConfig{
			Device: getString(v, "CAMERA_DEVICE", "/dev/video0"),
			Width:  getInt(v, "CAMERA_WIDTH", 1280),
			Height: getInt(v, "CAMERA_HEIGHT", 720),
		},
	}

	if cfg.API.BaseURL == "" {
		return nil, fmt.Errorf("config: SYNCVAULT_API_URL vacío")
	}
	return cfg, nil
}

// defaultStorePath devuelve ~/.syncvault/syncvault.db (o un archivo relativo si no hay HOME).
func defaultStorePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "syncvault.db"
	}
	return filepath.Join(home, ".syncvault", "syncvault.db")
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		switch v.Get(key).(type) {
		case int:
			return v.GetInt(key)
		case string:
			n, _ := strconv.Atoi(v.GetString(key))
			return n
		default:
			return v.GetInt(key)
		}
	}
	return def
}
