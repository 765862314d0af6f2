package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/reusedev/comfy-hub/internal/consts"
)

var GConfig *Config

func Init(config []byte) {
	initFromYaml(config)
	err := GConfig.Verify()
	if err != nil {
		panic(err)
	}
}

func initFromYaml(config []byte) {
	err := yaml.Unmarshal(config, &GConfig)
	if err != nil {
		panic(err)
	}
}

type Config struct {
	StorageEnabled  bool   `yaml:"storage_enabled"`
	StorageSupplier string `yaml:"storage_supplier"`
	StorageDir      string `yaml:"storage_dir"`
	URLExpires      string `yaml:"url_expires"`

	LogLevel      string `yaml:"log_level"`
	LogFile       string `yaml:"log_file"`
	LogMaxSize    int    `yaml:"log_max_size"`
	LogMaxBackups int    `yaml:"log_max_backups"`
	LogMaxAge     int    `yaml:"log_max_age"`

	Servers  []Server `yaml:"servers"`
	Defaults Defaults `yaml:"defaults"`
	AliOss   `yaml:"ali_oss"`
	MySQL    `yaml:"mysql"`
}

func (c *Config) Verify() error {
	if len(c.Servers) == 0 {
		return fmt.Errorf("at least one comfyui server is required")
	}
	for i, s := range c.Servers {
		if s.Address == "" {
			return fmt.Errorf("servers[%d]: address is required", i)
		}
		if s.Name == "" {
			return fmt.Errorf("servers[%d]: name is required", i)
		}
	}
	if c.StorageEnabled {
		switch consts.StorageSupplier(c.StorageSupplier) {
		case consts.StorageLocal:
			if c.StorageDir == "" {
				return fmt.Errorf("storage_dir is required for local storage")
			}
		case consts.StorageAliOSS:
			if c.AliOss.Bucket == "" {
				return fmt.Errorf("ali_oss.bucket is required for ali_oss storage")
			}
		default:
			return fmt.Errorf("storage_supplier must be 'local' or 'ali_oss'")
		}
	}
	if c.URLExpires == "" {
		c.URLExpires = "168h"
	}
	_, err := time.ParseDuration(c.URLExpires)
	if err != nil {
		return err
	}
	return nil
}

type Server struct {
	Name    string `yaml:"name"`
	Address string `yaml:"address"` // host:port
	Token   string `yaml:"token"`   // optional, for proxied deployments
	TLS     bool   `yaml:"tls"`
}

type Defaults struct {
	Checkpoint string  `yaml:"checkpoint"`
	Sampler    string  `yaml:"sampler"`
	Scheduler  string  `yaml:"scheduler"`
	Width      int     `yaml:"width"`
	Height     int     `yaml:"height"`
	Steps      int     `yaml:"steps"`
	CFG        float64 `yaml:"cfg"`
}

type AliOss struct {
	AccessKeyId     string `yaml:"access_key_id"`
	AccessKeySecret string `yaml:"access_key_secret"`
	Endpoint        string `yaml:"endpoint"`
	Region          string `yaml:"region"`
	Bucket          string `yaml:"bucket"`
	Directory       string `yaml:"directory"`
}

type MySQL struct {
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"`
	Username     string `yaml:"username"`
	Password     string `yaml:"password"`
	Database     string `yaml:"database"`
	Charset      string `yaml:"charset"`
	MaxIdleConns int    `yaml:"max_idle_conns"`
	MaxOpenConns int    `yaml:"max_open_conns"`
}
