// Package config defines the data structures related to configuration and
// includes functions for loading and validating it.
package config

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/magnatepoint/goal-projection/pkg/constants"
	"github.com/magnatepoint/goal-projection/pkg/datetime"
	"github.com/magnatepoint/goal-projection/pkg/validation"
	"github.com/spf13/viper"
)

// DateLayout is the format expected in config files and is also the output
// date format.
const DateLayout = constants.DateLayout

// EnvPrefix namespaces the environment variables that override scalar
// settings, e.g. GOAL_PROJECTION_OUTPUT_FORMAT or GOAL_PROJECTION_ASOFDATE.
const EnvPrefix = "GOAL_PROJECTION"

var envKeys = []string{"asOfDate", "logging.level", "logging.format", "logging.outputFile", "output.format"}

// Configuration holds all configuration for goal-projection.
type Configuration struct {
	AsOfDate string        `yaml:"asOfDate,omitempty" mapstructure:"asOfDate"`
	Goals    []Goal        `yaml:"goals" mapstructure:"goals"`
	Logging  LoggingConfig `yaml:"logging,omitempty" mapstructure:"logging"`
	Output   OutputConfig  `yaml:"output,omitempty" mapstructure:"output"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty" mapstructure:"level"`           // debug, info, warn, error
	Format     string `yaml:"format,omitempty" mapstructure:"format"`         // json, console
	OutputFile string `yaml:"outputFile,omitempty" mapstructure:"outputFile"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty" mapstructure:"format"` // pretty, csv, json
}

// Goal is a savings goal as written in the configuration file. Amounts are
// kept as strings so they reach the engine with full decimal precision.
type Goal struct {
	ID                  string `yaml:"id" mapstructure:"id"`
	Name                string `yaml:"name" mapstructure:"name"`
	Active              bool   `yaml:"active" mapstructure:"active"`
	TargetAmount        string `yaml:"targetAmount,omitempty" mapstructure:"targetAmount"`
	CurrentSavings      string `yaml:"currentSavings,omitempty" mapstructure:"currentSavings"`
	RemainingAmount     string `yaml:"remainingAmount,omitempty" mapstructure:"remainingAmount"`
	TargetDate          string `yaml:"targetDate,omitempty" mapstructure:"targetDate"`
	MonthlyContribution string `yaml:"monthlyContribution,omitempty" mapstructure:"monthlyContribution"`
	AchievedMilestones  []int  `yaml:"achievedMilestones,omitempty" mapstructure:"achievedMilestones"`
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := newViper()
	v.SetConfigFile(configPath)
	v.SetConfigType("yml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}

	return decode(v)
}

// LoadConfigurationFromReader loads a YAML-formatted configuration from r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := newViper()
	v.SetConfigType("yml")

	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config data, %s", err)
	}

	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range envKeys {
		_ = v.BindEnv(key)
	}
	return v
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	err := v.Unmarshal(&configuration)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	return &configuration, nil
}

// ResolveAsOfDate picks the evaluation date: the override when given, then the
// configured asOfDate, then the calendar date of now.
func (c *Configuration) ResolveAsOfDate(override string, now time.Time) (time.Time, error) {
	for _, candidate := range []string{override, c.AsOfDate} {
		if candidate == "" {
			continue
		}
		asOf, err := datetime.ParseDate(candidate)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid as-of date: %w", err)
		}
		return asOf, nil
	}
	return datetime.Truncate(now), nil
}

// ActiveGoals returns the goals marked active, in configuration order.
func (c *Configuration) ActiveGoals() []Goal {
	var goals []Goal
	for _, goal := range c.Goals {
		if goal.Active {
			goals = append(goals, goal)
		}
	}
	return goals
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (c *Configuration) ValidateConfiguration(asOf time.Time) []string {
	goals := make([]validation.GoalConfig, 0, len(c.Goals))
	for _, goal := range c.Goals {
		goals = append(goals, validation.GoalConfig{
			ID:                  goal.ID,
			Name:                goal.Name,
			Active:              goal.Active,
			TargetDate:          goal.TargetDate,
			MonthlyContribution: goal.MonthlyContribution,
		})
	}

	validator := validation.ConfigValidator{AsOfDate: asOf, Goals: goals}
	return validator.ValidateAll()
}
