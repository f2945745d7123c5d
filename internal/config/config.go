package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/limaJavier/ilp-timetabling/pkg/model"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const envPrefix = "TIMETABLING"

const (
	SlotDuration = "slot-duration"
	Rounding     = "rounding"
	Solver       = "solver"
	Strategy     = "strategy"
	CbcPath      = "cbc-path"
	TimeLimit    = "time-limit"
	LogLevel     = "log-level"
)

var (
	SupportedSolvers    = []string{"gophersat", "cbc"}
	SupportedStrategies = []string{"embedded", "postponed"}
)

// envReplacer maps a key like `slot-duration` to the variable TIMETABLING_SLOT_DURATION
var envReplacer = strings.NewReplacer("-", "_")

type Config struct {
	SlotDuration int           `mapstructure:"slot-duration"`
	Rounding     string        `mapstructure:"rounding"`
	Solver       string        `mapstructure:"solver"`
	Strategy     string        `mapstructure:"strategy"`
	CbcPath      string        `mapstructure:"cbc-path"`
	TimeLimit    time.Duration `mapstructure:"time-limit"`
	LogLevel     string        `mapstructure:"log-level"`
}

// New returns a viper instance holding the defaults and bound to the environment
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault(SlotDuration, model.DefaultSlotDuration)
	v.SetDefault(Rounding, string(model.RoundingFloor))
	v.SetDefault(Solver, "gophersat")
	v.SetDefault(Strategy, "embedded")
	v.SetDefault(CbcPath, "cbc")
	v.SetDefault(TimeLimit, time.Duration(0))
	v.SetDefault(LogLevel, log.InfoLevel.String())

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(envReplacer)
	v.AutomaticEnv()
	return v
}

// LoadConfig reads the optional config file into v and decodes the result. Values already set on v (e.g. from flags) take precedence
func LoadConfig(v *viper.Viper, file string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("cannot read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("cannot decode config: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (config *Config) validate() error {
	var result *multierror.Error
	if config.SlotDuration <= 0 {
		result = multierror.Append(result, fmt.Errorf("%v must be positive, got %v", SlotDuration, config.SlotDuration))
	}
	if _, err := model.ParseRounding(config.Rounding); err != nil {
		result = multierror.Append(result, err)
	}
	if !lo.Contains(SupportedSolvers, config.Solver) {
		result = multierror.Append(result, fmt.Errorf("unsupported solver \"%v\", expected one of %v", config.Solver, SupportedSolvers))
	}
	if !lo.Contains(SupportedStrategies, config.Strategy) {
		result = multierror.Append(result, fmt.Errorf("unsupported strategy \"%v\", expected one of %v", config.Strategy, SupportedStrategies))
	}
	if config.TimeLimit < 0 {
		result = multierror.Append(result, fmt.Errorf("%v cannot be negative", TimeLimit))
	}
	if _, err := log.ParseLevel(config.LogLevel); err != nil {
		result = multierror.Append(result, err)
	}
	return result.ErrorOrNil()
}

// RoundingPolicy is the validated rounding policy
func (config *Config) RoundingPolicy() model.Rounding {
	rounding, _ := model.ParseRounding(config.Rounding)
	return rounding
}

// Level is the validated log level
func (config *Config) Level() log.Level {
	level, _ := log.ParseLevel(config.LogLevel)
	return level
}
