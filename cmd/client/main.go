package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/cbodonnell/slide/client/game"
	"github.com/cbodonnell/slide/pkg/log"
	"github.com/cbodonnell/slide/pkg/scene"
	"github.com/hajimehoshi/ebiten/v2"
)

func main() {
	logLevel := flag.String("log-level", "info", "Log level")
	scenePath := flag.String("scene", os.Getenv("SLIDE_SCENE"), "Scene file to load, the built in demo if empty")
	debug := flag.Bool("debug", false, "Start with collision edges and frame rates shown")
	maxIterations := flag.Int("max-iterations", 0, "Override the movement iteration limit")
	watch := flag.Bool("watch", false, "Reload the scene file whenever it is saved")
	flag.Parse()

	parsedLogLevel, err := log.ParseLogLevel(*logLevel)
	if err != nil {
		panic(fmt.Sprintf("Failed to parse log level: %v", err))
	}

	logger := log.New(os.Stdout, "", log.DefaultLoggerFlag, parsedLogLevel)
	log.SetDefaultLogger(logger)
	log.Info("Log level set to %s", parsedLogLevel)

	s := scene.Default()
	if *scenePath != "" {
		s, err = scene.Load(*scenePath)
		if err != nil {
			panic(fmt.Sprintf("Failed to load scene: %v", err))
		}
	}

	opts := game.NewGameOptions{
		Debug:         *debug,
		Scene:         s,
		MaxIterations: *maxIterations,
	}
	if *watch {
		if *scenePath == "" {
			panic("-watch needs a scene file")
		}
		opts.ScenePath = *scenePath
	}

	g, err := game.NewGame(opts)
	if err != nil {
		panic(fmt.Sprintf("Failed to create game: %v", err))
	}

	ebiten.SetWindowSize(game.DefaultScreenWidth, game.DefaultScreenHeight)
	ebiten.SetWindowTitle(fmt.Sprintf("Slide - %s", s.Name))
	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		panic(fmt.Sprintf("Failed to run game: %v", err))
	}
}
