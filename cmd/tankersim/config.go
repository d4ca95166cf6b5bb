// cmd/tankersim/config.go
// Copyright(c) 2025 tankersim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package main

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/brunoga/deep"
	"github.com/spf13/viper"

	"github.com/tankerops/tankersim/pkg/archive"
	"github.com/tankerops/tankersim/pkg/log"
	"github.com/tankerops/tankersim/pkg/math"
	"github.com/tankerops/tankersim/pkg/rand"
	"github.com/tankerops/tankersim/pkg/sim"
	"github.com/tankerops/tankersim/pkg/util"
)

type Config struct {
	Aircraft  AircraftConfig  `mapstructure:"aircraft"`
	Mission   MissionConfig   `mapstructure:"mission"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Archive   ArchiveConfig   `mapstructure:"archive"`
	HTTPAddr  string          `mapstructure:"http"`
	LogLevel  string          `mapstructure:"loglevel"`
}

// AircraftConfig describes the aircraft at launch. A zero TailNumber,
// SpeedKts, or Altitude, or a negative Heading, is replaced with a random
// value.
type AircraftConfig struct {
	TailNumber string  `mapstructure:"tail"`
	Fuel       float64 `mapstructure:"fuel"`
	SpeedKts   int     `mapstructure:"speed"`
	Heading    int     `mapstructure:"heading"`
	Altitude   int     `mapstructure:"altitude"`
	// Position is either decimal "lat, lon" or N032.34.55.801,W114.27.33.908.
	Position string `mapstructure:"position"`
}

type MissionConfig struct {
	MinFuel         float64       `mapstructure:"minfuel"`
	MaxTransferRate float64       `mapstructure:"maxtransferrate"`
	InitialDelay    time.Duration `mapstructure:"initialdelay"`
	Period          time.Duration `mapstructure:"period"`
	Seed            int64         `mapstructure:"seed"`
}

type TelemetryConfig struct {
	URL         string        `mapstructure:"url"`
	DeviceName  string        `mapstructure:"device"`
	DeviceKey   string        `mapstructure:"key"`
	QueueSize   int           `mapstructure:"queuesize"`
	SendTimeout time.Duration `mapstructure:"sendtimeout"`
	RecordDir   string        `mapstructure:"recorddir"`
	SQLitePath  string        `mapstructure:"sqlite"`
	CSVPath     string        `mapstructure:"csv"`
	// Headers are added to each request made by the HTTP sink. Viper
	// lowercases the names; they are canonicalized when sent.
	Headers map[string]string `mapstructure:"headers"`
}

type ArchiveConfig struct {
	Kind            string `mapstructure:"backend"`
	Bucket          string `mapstructure:"bucket"`
	Prefix          string `mapstructure:"prefix"`
	GCSCredentials  string `mapstructure:"gcscredentials"`
	Region          string `mapstructure:"region"`
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"accesskeyid"`
	SecretAccessKey string `mapstructure:"secretaccesskey"`
	Dir             string `mapstructure:"dir"`
}

// The Goldwater MOA refueling track ARIP.
const defaultPosition = "32.582167, -114.459419"

var defaultConfig = Config{
	Aircraft: AircraftConfig{
		Fuel:     200000,
		Heading:  -1,
		Position: defaultPosition,
	},
	Mission: MissionConfig{
		MinFuel:         sim.DefaultMinFuel,
		MaxTransferRate: sim.DefaultMaxTransferRate,
		InitialDelay:    sim.DefaultInitialDelay,
		Period:          sim.DefaultPeriod,
	},
	Telemetry: TelemetryConfig{
		QueueSize:   sim.DefaultQueueSize,
		SendTimeout: sim.DefaultSendTimeout,
		Headers:     map[string]string{"user-agent": "tankersim"},
	},
	Archive: ArchiveConfig{
		Prefix: "missions",
	},
	LogLevel: "info",
}

// LoadConfig returns the default configuration overlaid with the contents
// of the given config file, if any, and then with TANKERSIM_* environment
// variables, e.g. TANKERSIM_AIRCRAFT_FUEL.
func LoadConfig(filename string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("TANKERSIM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Viper only consults the environment for keys it knows about, so
	// register all of them via their defaults.
	setDefaults(v, defaultConfig)

	if filename != "" {
		v.SetConfigFile(filename)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("%s: %w", filename, err)
		}
	}

	// Unmarshal decodes maps into the existing ones, so it needs a copy
	// that doesn't share them with defaultConfig.
	config := deep.MustCopy(defaultConfig)
	if err := v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return config, nil
}

func setDefaults(v *viper.Viper, c Config) {
	v.SetDefault("aircraft.tail", c.Aircraft.TailNumber)
	v.SetDefault("aircraft.fuel", c.Aircraft.Fuel)
	v.SetDefault("aircraft.speed", c.Aircraft.SpeedKts)
	v.SetDefault("aircraft.heading", c.Aircraft.Heading)
	v.SetDefault("aircraft.altitude", c.Aircraft.Altitude)
	v.SetDefault("aircraft.position", c.Aircraft.Position)

	v.SetDefault("mission.minfuel", c.Mission.MinFuel)
	v.SetDefault("mission.maxtransferrate", c.Mission.MaxTransferRate)
	v.SetDefault("mission.initialdelay", c.Mission.InitialDelay)
	v.SetDefault("mission.period", c.Mission.Period)
	v.SetDefault("mission.seed", c.Mission.Seed)

	v.SetDefault("telemetry.url", c.Telemetry.URL)
	v.SetDefault("telemetry.device", c.Telemetry.DeviceName)
	v.SetDefault("telemetry.key", c.Telemetry.DeviceKey)
	v.SetDefault("telemetry.queuesize", c.Telemetry.QueueSize)
	v.SetDefault("telemetry.sendtimeout", c.Telemetry.SendTimeout)
	v.SetDefault("telemetry.recorddir", c.Telemetry.RecordDir)
	v.SetDefault("telemetry.sqlite", c.Telemetry.SQLitePath)
	v.SetDefault("telemetry.csv", c.Telemetry.CSVPath)
	// Viper only merges nested keys from map[string]any defaults.
	headers := make(map[string]any)
	for k, val := range c.Telemetry.Headers {
		headers[k] = val
	}
	v.SetDefault("telemetry.headers", headers)

	v.SetDefault("archive.backend", c.Archive.Kind)
	v.SetDefault("archive.bucket", c.Archive.Bucket)
	v.SetDefault("archive.prefix", c.Archive.Prefix)
	v.SetDefault("archive.gcscredentials", c.Archive.GCSCredentials)
	v.SetDefault("archive.region", c.Archive.Region)
	v.SetDefault("archive.endpoint", c.Archive.Endpoint)
	v.SetDefault("archive.accesskeyid", c.Archive.AccessKeyID)
	v.SetDefault("archive.secretaccesskey", c.Archive.SecretAccessKey)
	v.SetDefault("archive.dir", c.Archive.Dir)

	v.SetDefault("http", c.HTTPAddr)
	v.SetDefault("loglevel", c.LogLevel)
}

// Validate records any problems with the configuration in e.
func (c *Config) Validate(e *util.ErrorLogger) {
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		e.Error(err)
	}

	e.Push("aircraft")
	if c.Aircraft.Fuel <= 0 {
		e.ErrorString("fuel: %.1f: must be positive", c.Aircraft.Fuel)
	}
	if c.Aircraft.SpeedKts < 0 {
		e.ErrorString("speed: %d: must not be negative", c.Aircraft.SpeedKts)
	}
	if _, err := math.ParseLatLong(c.Aircraft.Position); err != nil {
		e.Error(err)
	}
	e.Pop()

	e.Push("mission")
	if c.Mission.MinFuel < 0 {
		e.ErrorString("minfuel: %.1f: must not be negative", c.Mission.MinFuel)
	}
	if c.Mission.MaxTransferRate <= 0 {
		e.ErrorString("maxtransferrate: %.1f: must be positive", c.Mission.MaxTransferRate)
	}
	if c.Mission.InitialDelay < 0 {
		e.ErrorString("initialdelay: %s: must not be negative", c.Mission.InitialDelay)
	}
	if c.Mission.Period <= 0 {
		e.ErrorString("period: %s: must be positive", c.Mission.Period)
	}
	e.Pop()

	e.Push("telemetry")
	if c.Telemetry.URL != "" {
		if u, err := url.Parse(c.Telemetry.URL); err != nil {
			e.Error(err)
		} else if u.Scheme != "http" && u.Scheme != "https" {
			e.ErrorString("url: %s: must be http or https", c.Telemetry.URL)
		}
	}
	if c.Telemetry.DeviceKey != "" {
		if _, err := base64.StdEncoding.DecodeString(c.Telemetry.DeviceKey); err != nil {
			e.ErrorString("key: not valid base64: %v", err)
		}
	}
	if c.Telemetry.QueueSize <= 0 {
		e.ErrorString("queuesize: %d: must be positive", c.Telemetry.QueueSize)
	}
	if c.Telemetry.CSVPath != "" && c.Telemetry.SQLitePath == "" {
		e.ErrorString("csv: requires sqlite to be set")
	}
	e.Pop()

	e.Push("archive")
	kind := strings.ToLower(c.Archive.Kind)
	if !slices.Contains([]string{"", "gcs", "s3", "local", "dryrun"}, kind) {
		e.ErrorString("backend: %q: must be one of gcs, s3, local, or dryrun", c.Archive.Kind)
	}
	if kind != "" && c.Telemetry.RecordDir == "" {
		e.ErrorString("backend: %s: requires telemetry.recorddir to be set", kind)
	}
	if (kind == "gcs" || kind == "s3") && c.Archive.Bucket == "" {
		e.ErrorString("bucket: must be specified for %s", kind)
	}
	if kind == "local" && c.Archive.Dir == "" {
		e.ErrorString("dir: must be specified for local")
	}
	e.Pop()
}

// LaunchParams are the initial conditions of a mission after random
// values have been chosen for anything left unspecified.
type LaunchParams struct {
	TailNumber string
	Fuel       float64
	SpeedKts   int
	Heading    int
	Altitude   int
	Latitude   float64
	Longitude  float64
	LaunchTime time.Time
}

// Launch resolves the aircraft configuration; it should only be called
// on a validated Config.
func (c *Config) Launch(r *rand.Rand, now time.Time) (LaunchParams, error) {
	p, err := math.ParseLatLong(c.Aircraft.Position)
	if err != nil {
		return LaunchParams{}, err
	}

	lp := LaunchParams{
		TailNumber: c.Aircraft.TailNumber,
		Fuel:       c.Aircraft.Fuel,
		SpeedKts:   c.Aircraft.SpeedKts,
		Heading:    c.Aircraft.Heading,
		Altitude:   c.Aircraft.Altitude,
		Latitude:   p.Latitude(),
		Longitude:  p.Longitude(),
		LaunchTime: now.UTC(),
	}
	if lp.TailNumber == "" {
		lp.TailNumber = r.TailNumber()
	}
	if lp.SpeedKts == 0 {
		lp.SpeedKts = r.Range(250, 400)
	}
	if lp.Heading < 0 {
		lp.Heading = r.Range(0, 360)
	}
	if lp.Altitude == 0 {
		lp.Altitude = r.Range(25000, 40000)
	}
	return lp, nil
}

func (lp LaunchParams) Aircraft() *sim.AircraftState {
	return sim.NewAircraftStateAt(lp.TailNumber, lp.Fuel, lp.Latitude, lp.Longitude,
		lp.Altitude, lp.Heading, lp.SpeedKts, lp.LaunchTime)
}

// RecordingPath returns the path of the flight recording for the
// mission.
func (c *Config) RecordingPath(lp LaunchParams) string {
	return filepath.Join(c.Telemetry.RecordDir,
		lp.TailNumber+"-"+lp.LaunchTime.Format("20060102T150405Z")+".msgpack.zst")
}

func (c *Config) SimulatorConfig(r *rand.Rand) sim.SimulatorConfig {
	cfg := sim.DefaultSimulatorConfig()
	cfg.MinFuel = c.Mission.MinFuel
	cfg.MaxTransferRate = c.Mission.MaxTransferRate
	cfg.TransferRates = sim.UniformTransferRate(r)
	return cfg
}

func (c *Config) ArchiveConfig() archive.Config {
	return archive.Config{
		Kind:            c.Archive.Kind,
		Bucket:          c.Archive.Bucket,
		Prefix:          c.Archive.Prefix,
		GCSCredentials:  c.Archive.GCSCredentials,
		Region:          c.Archive.Region,
		Endpoint:        c.Archive.Endpoint,
		AccessKeyID:     c.Archive.AccessKeyID,
		SecretAccessKey: c.Archive.SecretAccessKey,
		Dir:             c.Archive.Dir,
	}
}
