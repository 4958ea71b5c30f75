package config

import (
	"errors"
	"flag"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// BridgeConfig holds configuration for the MCP server and both of its
// upstream transports: the editor Remote Control API and the runtime socket.
type BridgeConfig struct {
	ProjectPath string `yaml:"project_path"`
	ProjectName string `yaml:"project_name"`

	EditorHost string `yaml:"editor_host"`
	EditorPort int    `yaml:"editor_port"`

	RuntimeHost       string        `yaml:"runtime_host"`
	RuntimePort       int           `yaml:"runtime_port"`
	Reconnect         bool          `yaml:"reconnect"`
	ReconnectDelay    time.Duration `yaml:"reconnect_delay"`
	ReconnectMaxDelay time.Duration `yaml:"reconnect_max_delay"`
	RPCTimeout        time.Duration `yaml:"rpc_timeout"`
	ConnectTimeout    time.Duration `yaml:"connect_timeout"`

	StatusAddr     string   `yaml:"status_addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	RedisAddr      string   `yaml:"redis_addr"`
	NotifyChannel  string   `yaml:"notify_channel"`

	LogLevel   string `yaml:"log_level"`
	ConfigFile string `yaml:"-"`
}

// SetDefaults initializes c with built-in defaults.
func (c *BridgeConfig) SetDefaults() {
	if c.ProjectName == "" {
		c.ProjectName = "HktProto"
	}
	if c.EditorHost == "" {
		c.EditorHost = "127.0.0.1"
	}
	if c.EditorPort == 0 {
		c.EditorPort = 30010
	}
	if c.RuntimeHost == "" {
		c.RuntimeHost = "127.0.0.1"
	}
	if c.RuntimePort == 0 {
		c.RuntimePort = 9876
	}
	c.Reconnect = true
	if c.ReconnectDelay == 0 {
		c.ReconnectDelay = 5 * time.Second
	}
	if c.ReconnectMaxDelay == 0 {
		c.ReconnectMaxDelay = 60 * time.Second
	}
	if c.RPCTimeout == 0 {
		c.RPCTimeout = 30 * time.Second
	}
	if c.ConnectTimeout == 0 {
		c.ConnectTimeout = 10 * time.Second
	}
	if c.NotifyChannel == "" {
		c.NotifyChannel = "hktmcp:runtime:notifications"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.ConfigFile == "" {
		c.ConfigFile = DefaultConfigPath("hkt-mcp.yaml")
	}
}

// ApplyEnv overlays environment variables onto the current config values.
// Malformed numeric values are ignored and the current value is kept.
func (c *BridgeConfig) ApplyEnv() {
	if v := GetEnv("HKT_MCP_CONFIG_FILE", ""); v != "" {
		c.ConfigFile = v
	}
	if v := GetEnv("UE_PROJECT_PATH", ""); v != "" {
		c.ProjectPath = v
	}
	if v := GetEnv("UE_PROJECT_NAME", ""); v != "" {
		c.ProjectName = v
	}
	if v := GetEnv("HKT_MCP_LOG_LEVEL", ""); v != "" {
		c.LogLevel = strings.ToLower(v)
	}
	if v := GetEnv("HKT_MCP_EDITOR_HOST", ""); v != "" {
		c.EditorHost = v
	}
	if v := GetEnv("HKT_MCP_EDITOR_PORT", ""); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.EditorPort = n
		}
	}
	if v := GetEnv("HKT_MCP_WS_HOST", ""); v != "" {
		c.RuntimeHost = v
	}
	if v := GetEnv("HKT_MCP_WS_PORT", ""); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.RuntimePort = n
		}
	}
	if v := GetEnv("HKT_MCP_RECONNECT", ""); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Reconnect = b
		}
	}
	setSeconds("HKT_MCP_RECONNECT_DELAY", &c.ReconnectDelay)
	setSeconds("HKT_MCP_RECONNECT_MAX_DELAY", &c.ReconnectMaxDelay)
	setSeconds("HKT_MCP_RPC_TIMEOUT", &c.RPCTimeout)
	setSeconds("HKT_MCP_CONNECT_TIMEOUT", &c.ConnectTimeout)
	if v := GetEnv("HKT_MCP_STATUS_ADDR", ""); v != "" {
		c.StatusAddr = normalizeAddr(v)
	}
	if v := GetEnv("HKT_MCP_ALLOWED_ORIGINS", ""); v != "" {
		c.AllowedOrigins = splitComma(v)
	}
	if v := GetEnv("HKT_MCP_REDIS_ADDR", ""); v != "" {
		c.RedisAddr = v
	}
	if v := GetEnv("HKT_MCP_NOTIFY_CHANNEL", ""); v != "" {
		c.NotifyChannel = v
	}
}

// BindFlagsFromCurrent binds command line flags using the current config values as defaults.
func (c *BridgeConfig) BindFlagsFromCurrent(fs *flag.FlagSet) {
	fs.StringVar(&c.ConfigFile, "config", c.ConfigFile, "config file path")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "log verbosity (all, debug, info, warn, error, fatal, none)")
	fs.StringVar(&c.ProjectPath, "project-path", c.ProjectPath, "Unreal project directory")
	fs.StringVar(&c.ProjectName, "project-name", c.ProjectName, "Unreal project name")
	fs.StringVar(&c.EditorHost, "editor-host", c.EditorHost, "Remote Control API host")
	fs.IntVar(&c.EditorPort, "editor-port", c.EditorPort, "Remote Control API port")
	fs.StringVar(&c.RuntimeHost, "ws-host", c.RuntimeHost, "runtime bridge WebSocket host")
	fs.IntVar(&c.RuntimePort, "ws-port", c.RuntimePort, "runtime bridge WebSocket port")
	fs.BoolVar(&c.Reconnect, "reconnect", c.Reconnect, "reconnect to the runtime automatically")
	fs.DurationVar(&c.ReconnectDelay, "reconnect-delay", c.ReconnectDelay, "initial reconnect delay")
	fs.DurationVar(&c.ReconnectMaxDelay, "reconnect-max-delay", c.ReconnectMaxDelay, "reconnect delay ceiling")
	fs.DurationVar(&c.RPCTimeout, "rpc-timeout", c.RPCTimeout, "default runtime call timeout")
	fs.DurationVar(&c.ConnectTimeout, "connect-timeout", c.ConnectTimeout, "runtime dial timeout")
	fs.Func("status-addr", "status/metrics listen address or port (disabled when empty; e.g. 127.0.0.1:9090 or 9090)", func(v string) error {
		c.StatusAddr = normalizeAddr(v)
		return nil
	})
	fs.Func("allowed-origins", "comma separated list of allowed CORS origins for the status server", func(v string) error {
		c.AllowedOrigins = splitComma(v)
		return nil
	})
	fs.StringVar(&c.RedisAddr, "redis-addr", c.RedisAddr, "redis URL for publishing runtime notifications (disabled when empty)")
	fs.StringVar(&c.NotifyChannel, "notify-channel", c.NotifyChannel, "redis channel for runtime notifications")
}

// LoadFile populates the config from a YAML file. Fields already set remain unless
// overwritten by corresponding entries in the file.
func (c *BridgeConfig) LoadFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(b, c)
}

// Validate reports configuration values the bridge cannot work with.
func (c *BridgeConfig) Validate() error {
	var errs []error
	if c.EditorPort <= 0 || c.EditorPort > 65535 {
		errs = append(errs, fmt.Errorf("editor port %d out of range", c.EditorPort))
	}
	if c.RuntimePort <= 0 || c.RuntimePort > 65535 {
		errs = append(errs, fmt.Errorf("runtime port %d out of range", c.RuntimePort))
	}
	if c.ReconnectDelay <= 0 {
		errs = append(errs, errors.New("reconnect delay must be positive"))
	}
	if c.ReconnectMaxDelay < c.ReconnectDelay {
		errs = append(errs, fmt.Errorf("reconnect max delay %s below base delay %s", c.ReconnectMaxDelay, c.ReconnectDelay))
	}
	if c.RPCTimeout <= 0 {
		errs = append(errs, errors.New("rpc timeout must be positive"))
	}
	return errors.Join(errs...)
}

// WebSocketURL returns the runtime bridge URL.
func (c *BridgeConfig) WebSocketURL() string {
	return "ws://" + net.JoinHostPort(c.RuntimeHost, strconv.Itoa(c.RuntimePort))
}

// EditorURL returns the Remote Control API base URL.
func (c *BridgeConfig) EditorURL() string {
	return "http://" + net.JoinHostPort(c.EditorHost, strconv.Itoa(c.EditorPort))
}

func setSeconds(key string, dst *time.Duration) {
	v := GetEnv(key, "")
	if v == "" {
		return
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		*dst = time.Duration(f * float64(time.Second))
		return
	}
	if d, err := time.ParseDuration(v); err == nil {
		*dst = d
	}
}

func normalizeAddr(v string) string {
	if v != "" && !strings.Contains(v, ":") {
		return ":" + v
	}
	return v
}

func splitComma(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Load resolves the config with precedence defaults < file < env < args. The
// flags are bound to fs, which is parsed with args.
func Load(fs *flag.FlagSet, args []string) (BridgeConfig, error) {
	var c BridgeConfig
	c.SetDefaults()
	c.ApplyEnv()
	if p, ok := configArg(args); ok {
		c.ConfigFile = p
	}
	if c.ConfigFile != "" {
		if err := c.LoadFile(c.ConfigFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return c, fmt.Errorf("load config %s: %w", c.ConfigFile, err)
		}
	}
	c.ApplyEnv()
	c.BindFlagsFromCurrent(fs)
	if err := fs.Parse(args); err != nil {
		return c, err
	}
	return c, c.Validate()
}

// configArg finds --config/-config before flags are parsed so the file can be
// loaded underneath env and flag values.
func configArg(args []string) (string, bool) {
	for i, a := range args {
		switch {
		case (a == "--config" || a == "-config") && i+1 < len(args):
			return args[i+1], true
		case strings.HasPrefix(a, "--config="):
			return strings.TrimPrefix(a, "--config="), true
		case strings.HasPrefix(a, "-config="):
			return strings.TrimPrefix(a, "-config="), true
		}
	}
	return "", false
}
