package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/pflag"

	"github.com/tuannm99/novapool/internal"
	"github.com/tuannm99/novapool/internal/engine"
	"github.com/tuannm99/novapool/internal/logger"
	"github.com/tuannm99/novapool/internal/shell"
)

const prompt = "novapool> "

func defaultHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".novapool_history"
	}
	return filepath.Join(home, ".novapool_history")
}

func main() {
	fs := pflag.NewFlagSet("novapool", pflag.ExitOnError)
	internal.RegisterFlags(fs)
	var (
		cfgPath  = fs.String("config", "", "YAML config file")
		histPath = fs.String("history", defaultHistoryPath(), "history file path")
		oneShot  = fs.StringP("command", "c", "", "execute one command and exit")
		reset    = fs.Bool("reset", false, "remove existing page files before opening")
	)
	_ = fs.Parse(os.Args[1:])

	cfg, err := internal.Load(*cfgPath, fs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.LogConfig{
		Level:       cfg.Log.Level,
		InfoLogPath: cfg.Log.InfoLogPath,
	}, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}

	if *reset {
		if err := engine.Destroy(cfg); err != nil {
			log.Fatalf("reset: %v", err)
		}
	}

	db, err := engine.Open(cfg, log)
	if err != nil {
		log.Fatalf("open: %v", err)
	}

	sh := shell.New(db.Pool, os.Stdout)
	code := run(sh, *oneShot, *histPath)

	if err := sh.Close(); err != nil {
		log.Warnf("release session pins: %v", err)
	}
	if err := db.Close(); err != nil {
		log.Errorf("close: %v", err)
		code = 1
	}
	os.Exit(code)
}

func run(sh *shell.Shell, oneShot, histPath string) int {
	if strings.TrimSpace(oneShot) != "" {
		if err := sh.Exec(oneShot); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return 1
		}
		return 0
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          prompt,
		HistoryFile:     histPath,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "readline: %v\n", err)
		return 1
	}
	defer func() { _ = rl.Close() }()

	fmt.Println("type help for commands, quit to exit")
	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err != nil {
			// EOF
			fmt.Println()
			return 0
		}

		line = strings.TrimSpace(line)
		switch line {
		case "":
			continue
		case "quit", "exit", "\\q":
			return 0
		}
		if err := sh.Exec(line); err != nil {
			fmt.Printf("error: %v\n", err)
		}
	}
}
