// Package config reads the process configuration from an ini file.
package config

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"gopkg.in/ini.v1"

	"allam/cycle"
	"allam/rootfind"
)

type Config struct {
	Addr     string
	LogLevel log.Level

	NetPower    float64 // kW, used when a request omits it
	PinchTarget float64 // K

	Coefficients cycle.Coefficients
	RootFind     rootfind.Options

	Workers    int
	SweepSteps int
}

// Default returns the configuration used when no file is given.
func Default() Config {
	cfg, _ := loadCfg(ini.Empty())
	return cfg
}

func Load(path string) (Config, error) {
	file, err := ini.Load(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg, err := loadCfg(file)
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func stationKey(i int) string {
	return fmt.Sprintf("station%d", i)
}

func loadCfg(file *ini.File) (Config, error) {
	level, err := log.ParseLevel(file.Section("log").Key("level").MustString("info"))
	if err != nil {
		return Config{}, err
	}

	coef := cycle.DefaultCoefficients()
	for i := 0; i < cycle.NumStations; i++ {
		id := cycle.StationID(i)
		if id != cycle.TurbineOutlet && id != cycle.CompressorOutlet {
			coef.PressureDrop[i] = file.Section("pressure_drop").Key(stationKey(i)).MustFloat64(coef.PressureDrop[i])
		}
		coef.Efficiency[i] = file.Section("efficiency").Key(stationKey(i)).MustFloat64(coef.Efficiency[i])
		coef.TemperatureHead[i] = file.Section("temperature_head").Key(stationKey(i)).MustFloat64(coef.TemperatureHead[i])
	}

	d := rootfind.DefaultOptions()
	cfg := Config{
		Addr:     file.Section("server").Key("addr").MustString(":9000"),
		LogLevel: level,

		NetPower:    file.Section("cycle").Key("net_power").MustFloat64(100),
		PinchTarget: file.Section("cycle").Key("pinch_point").MustFloat64(coef.TemperatureHead[cycle.RecuperatorColdOutlet]),

		Coefficients: coef,
		RootFind: rootfind.Options{
			XTol:      file.Section("rootfind").Key("xtol").MustFloat64(d.XTol),
			FTol:      file.Section("rootfind").Key("ftol").MustFloat64(d.FTol),
			MaxIter:   file.Section("rootfind").Key("max_iter").MustInt(d.MaxIter),
			Factor:    file.Section("rootfind").Key("factor").MustFloat64(d.Factor),
			MaxExpand: file.Section("rootfind").Key("max_expand").MustInt(d.MaxExpand),
			Step:      file.Section("rootfind").Key("step").MustFloat64(d.Step),
		},

		Workers:    file.Section("sweep").Key("workers").MustInt(0),
		SweepSteps: file.Section("sweep").Key("steps").MustInt(50),
	}
	if cfg.Workers < 0 {
		return Config{}, fmt.Errorf("sweep workers %d", cfg.Workers)
	}
	if cfg.SweepSteps < 1 {
		return Config{}, fmt.Errorf("sweep steps %d", cfg.SweepSteps)
	}
	return cfg, nil
}

// SolverOptions returns the cycle solver options the configuration implies.
func (c Config) SolverOptions() []cycle.Option {
	return []cycle.Option{
		cycle.WithCoefficients(c.Coefficients),
		cycle.WithFinder(rootfind.Default(c.RootFind)),
	}
}
