package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"petmate/internal/api"
	"petmate/internal/chat"
	"petmate/internal/config"
	"petmate/internal/cooldown"
	"petmate/internal/pet"
	"petmate/internal/ui"
)

func main() {
	cfg := config.FromEnv()

	// The terminal belongs to the UI; logs go to a file or nowhere.
	if cfg.DataDir != "" {
		_ = os.MkdirAll(cfg.DataDir, 0o755)
		f, err := tea.LogToFile(filepath.Join(cfg.DataDir, "petmate.log"), "petmate")
		if err == nil {
			defer f.Close()
		} else {
			log.SetOutput(io.Discard)
		}
	} else {
		log.SetOutput(io.Discard)
	}

	client := api.NewClient(cfg.ServerURL, cfg.Token)
	store := pet.NewStore(client, cfg.CachePath())
	scheduler := cooldown.Load(cfg.CooldownPath())
	dispatcher := pet.NewDispatcher(store, scheduler)
	chatSync := chat.NewSync(client)

	p := tea.NewProgram(ui.NewModel(cfg, store, dispatcher, chatSync))
	if _, err := p.Run(); err != nil {
		fmt.Printf("Alas, there's been an error: %v\n", err)
		os.Exit(1)
	}
}
