// Command combotest is a keyboard-less interactive tester for a combo
// configuration: it reads raw keystrokes from the controlling
// terminal and prints what the engine forwards downstream.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/vinewz/combo-engine/combo"
	"github.com/vinewz/combo-engine/combocfg"
	"github.com/vinewz/combo-engine/combodbg"
	"github.com/vinewz/combo-engine/combolog"
)

func main() {
	configPath := flag.String("config", "combos.yaml", "path to the combo configuration file")
	flag.Parse()

	logger := combolog.Slog{L: slog.New(slog.NewTextHandler(os.Stderr, nil))}

	reg, err := combocfg.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "loading combo config:", err)
		os.Exit(1)
	}

	engine := combo.NewEngine(reg, logger)
	host := combodbg.New(engine, os.Stdout)

	fmt.Fprintln(os.Stdout, "combotest: type to exercise combos, Ctrl-D to quit")
	if err := host.Run(os.Stdin); err != nil {
		fmt.Fprintln(os.Stderr, "combotest exited:", err)
		os.Exit(1)
	}
}
