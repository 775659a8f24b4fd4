// Command combod is the combo-engine daemon: it loads a combo
// configuration, opens a physical evdev keyboard, and re-emits
// resolved key events through a virtual output device.
package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/vinewz/combo-engine/combo"
	"github.com/vinewz/combo-engine/combocfg"
	"github.com/vinewz/combo-engine/combolog"
	"github.com/vinewz/combo-engine/evdevhost"
)

func main() {
	configPath := flag.String("config", "combos.yaml", "path to the combo configuration file")
	flag.Parse()

	logger := combolog.Slog{L: slog.New(slog.NewTextHandler(os.Stderr, nil))}

	reg, err := combocfg.Load(*configPath)
	if err != nil {
		logger.L.Error("loading combo config", "err", err)
		os.Exit(1)
	}

	engine := combo.NewEngine(reg, logger)

	host, err := evdevhost.New(engine, logger)
	if err != nil {
		logger.L.Error("opening evdev host", "err", err)
		os.Exit(1)
	}
	defer host.Close()

	logger.L.Info("combod ready", "combos", reg.Len())
	if err := host.Run(); err != nil {
		logger.L.Error("evdev read loop exited", "err", err)
		os.Exit(1)
	}
}
