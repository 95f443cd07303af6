package config

import (
	"fmt"
	"os"
	"path"

	"gopkg.in/yaml.v2"
)

type SysConfig struct {
	Appid    string `yaml:"appid"`
	Location string `yaml:"location"`
	Workdir  string `yaml:"workdir"`
	Debug    bool   `yaml:"debug"`
}

type WebConfig struct {
	Host          string `yaml:"host"`
	Port          int    `yaml:"port"`
	JwtSecret     string `yaml:"jwt_secret"`
	AccessExpire  int    `yaml:"access_expire"`  // minutes
	RefreshExpire int    `yaml:"refresh_expire"` // hours
}

type DBConfig struct {
	Type     string `yaml:"type"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Passwd   string `yaml:"passwd"`
	MaxConn  int    `yaml:"max_conn"`
	IdleConn int    `yaml:"idle_conn"`
	Debug    bool   `yaml:"debug"`
}

type LogConfig struct {
	Mode       string `yaml:"mode"`
	FileEnable bool   `yaml:"file_enable"`
	Filename   string `yaml:"filename"`
}

type AppConfig struct {
	System   SysConfig `yaml:"system" json:"system"`
	Web      WebConfig `yaml:"web" json:"web"`
	Database DBConfig  `yaml:"database" json:"database"`
	Logger   LogConfig `yaml:"logger" json:"logger"`
}

func (c *AppConfig) GetLogDir() string {
	return path.Join(c.System.Workdir, "logs")
}

func (c *AppConfig) GetDataDir() string {
	return path.Join(c.System.Workdir, "data")
}

func (c *AppConfig) InitDirs() {
	_ = os.MkdirAll(path.Join(c.System.Workdir, "logs"), 0o755)
	_ = os.MkdirAll(path.Join(c.System.Workdir, "data"), 0o755)
}

var DefaultAppConfig = &AppConfig{
	System: SysConfig{
		Appid:    "comercial",
		Location: "America/Sao_Paulo",
		Workdir:  "/var/comercial",
		Debug:    true,
	},
	Web: WebConfig{
		Host:          "0.0.0.0",
		Port:          1816,
		JwtSecret:     "9b6de5cc-0731-4bf1-xxxx-0f568ac9da37",
		AccessExpire:  30,
		RefreshExpire: 168,
	},
	Database: DBConfig{
		Type:     "postgres",
		Host:     "127.0.0.1",
		Port:     5432,
		Name:     "comercial",
		User:     "postgres",
		Passwd:   "comercial",
		MaxConn:  100,
		IdleConn: 10,
	},
	Logger: LogConfig{
		Mode:       "development",
		FileEnable: true,
		Filename:   "/var/comercial/comercial.log",
	},
}

func setEnvValue(name string, val *string) {
	if evalue := os.Getenv(name); evalue != "" {
		*val = evalue
	}
}

func setEnvBoolValue(name string, val *bool) {
	if evalue := os.Getenv(name); evalue != "" {
		*val = evalue == "true" || evalue == "1" || evalue == "on"
	}
}

// LoadConfig reads the YAML configuration file and applies environment
// overrides. A missing file falls back to DefaultAppConfig.
func LoadConfig(cfile string) *AppConfig {
	appconfig := DefaultAppConfig
	if cfile != "" {
		if _, err := os.Stat(cfile); err == nil {
			data, err := os.ReadFile(cfile)
			if err != nil {
				panic(err)
			}
			appconfig = new(AppConfig)
			if err := yaml.Unmarshal(data, appconfig); err != nil {
				panic(fmt.Errorf("parse config %s: %w", cfile, err))
			}
		}
	}

	setEnvValue("COMERCIAL_SYSTEM_WORKDIR", &appconfig.System.Workdir)
	setEnvBoolValue("COMERCIAL_SYSTEM_DEBUG", &appconfig.System.Debug)
	setEnvValue("COMERCIAL_DB_HOST", &appconfig.Database.Host)
	setEnvValue("COMERCIAL_DB_NAME", &appconfig.Database.Name)
	setEnvValue("COMERCIAL_DB_USER", &appconfig.Database.User)
	setEnvValue("COMERCIAL_DB_PWD", &appconfig.Database.Passwd)
	setEnvValue("COMERCIAL_WEB_JWT_SECRET", &appconfig.Web.JwtSecret)

	return appconfig
}
