package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"allam/config"
	"allam/cycle"
	"allam/fluid"
	"allam/model"
	"allam/scenario"
	"allam/server"
	"allam/sweep"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

func main() {
	cfgPath := flag.String("config", "conf/config.ini", "ini configuration file")
	scenarioPath := flag.String("scenario", "", "HCL scenario file; solves it and exits instead of serving")
	outDir := flag.String("out", ".", "output directory for scenario results")
	addr := flag.String("addr", "", "listen address, overrides the configuration")
	flag.Parse()

	if err := run(*cfgPath, *scenarioPath, *outDir, *addr); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func run(cfgPath, scenarioPath, outDir, addr string) error {
	cfg := config.Default()
	if cfgPath != "" {
		var err error
		cfg, err = config.Load(cfgPath)
		if err != nil {
			return err
		}
	}
	log.SetLevel(cfg.LogLevel)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	backend := fluid.NewMemo(fluid.NewIdealGas())
	solver, err := cycle.NewSolver(backend, cfg.SolverOptions()...)
	if err != nil {
		return err
	}

	if scenarioPath != "" {
		return runScenario(solver, cfg, scenarioPath, outDir)
	}

	if addr == "" {
		addr = cfg.Addr
	}
	upgrader.CheckOrigin = func(r *http.Request) bool {
		return true
	}
	s := server.NewServer(addr, upgrader, server.Engine{
		Solver:  solver,
		Backend: backend,
		Env: model.Env{
			MinPressure:   8e6,
			PressureRatio: 2.2,
			Temperatures:  [3]float64{310, 1073, 900},
			NetPower:      cfg.NetPower,
			PinchTarget:   cfg.PinchTarget,
		},
		Workers:    cfg.Workers,
		SweepSteps: cfg.SweepSteps,
	})
	return s.Serve()
}

func runScenario(solver *cycle.Solver, cfg config.Config, path, outDir string) error {
	sc, err := scenario.Load(path, scenario.Defaults{
		NetPower:    cfg.NetPower,
		PinchTarget: cfg.PinchTarget,
	})
	if err != nil {
		return err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}

	failed := 0
	for _, p := range sc.Points {
		res, err := solver.Solve(p.Conditions)
		if err != nil {
			log.WithField("point", p.Name).Error(err)
			failed++
			continue
		}
		if err := writeFile(filepath.Join(outDir, p.Name+"_cycle.csv"), func(f *os.File) error {
			return cycle.WriteStations(f, res)
		}); err != nil {
			return err
		}
		if err := writeFile(filepath.Join(outDir, p.Name+"_cycle_g.csv"), func(f *os.File) error {
			return cycle.WriteAggregate(f, res)
		}); err != nil {
			return err
		}
		log.WithFields(log.Fields{
			"point":  p.Name,
			"kRecyc": res.Aggregate.RecirculationRatio,
			"pinch":  res.Aggregate.Pinch,
			"efc":    res.Aggregate.Efficiency,
		}).Info("operating point solved")
	}

	for _, sw := range sc.Sweeps {
		p, _ := sc.Point(sw.Point)
		workers := sw.Workers
		if workers == 0 {
			workers = cfg.Workers
		}
		rep, err := sweep.NewRunner(solver, workers).Run(context.Background(), p.Conditions, sw.Spec)
		if err != nil {
			return err
		}
		if err := writeFile(filepath.Join(outDir, sw.Name+"_sweep.csv"), func(f *os.File) error {
			return sweep.WriteCSV(f, rep)
		}); err != nil {
			return err
		}
		failed += rep.Failed
	}

	if failed > 0 {
		return fmt.Errorf("%d operating points failed", failed)
	}
	return nil
}

func writeFile(path string, write func(f *os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
