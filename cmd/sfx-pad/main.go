package main

import (
	"fmt"
	"log"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/joho/godotenv"

	"github.com/lixenwraith/sfx"
)

// sfx-pad is an interactive soundboard for auditioning a sound bank:
// number keys trigger sounds, +/- and [/] adjust volumes, p pauses,
// s stops everything, r plays a random UI sound.

func main() {
	// Optional .env overrides for SFX_* settings
	_ = godotenv.Load()

	svc := sfx.NewService()
	if err := svc.Init(nil); err != nil {
		log.Fatalf("init: %v", err)
	}
	if err := svc.Start(); err != nil {
		log.Fatalf("start: %v", err)
	}
	defer svc.Stop()

	m := svc.Manager()
	fx := sfx.NewEffects(m)
	names := m.Loaded()

	screen, err := tcell.NewScreen()
	if err != nil {
		log.Fatalf("screen: %v", err)
	}
	if err := screen.Init(); err != nil {
		log.Fatalf("screen init: %v", err)
	}
	defer screen.Fini()

	// Periodic maintenance and redraw
	quit := make(chan struct{})
	go func() {
		ticker := time.NewTicker(250 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-quit:
				return
			case <-ticker.C:
				m.Update()
				screen.PostEvent(tcell.NewEventInterrupt(nil))
			}
		}
	}()
	defer close(quit)

	paused := false
	lastMsg := ""
	if svc.IsSilent() {
		lastMsg = "no audio device: running silent"
	}

	for {
		draw(screen, m, fx, names, paused, lastMsg)

		switch ev := screen.PollEvent().(type) {
		case *tcell.EventResize:
			screen.Sync()
		case *tcell.EventInterrupt:
			// Redraw tick
		case *tcell.EventKey:
			if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
				return
			}
			r := ev.Rune()
			switch {
			case r == 'q':
				return
			case r >= '1' && r <= '9':
				idx := int(r - '1')
				if idx < len(names) {
					lastMsg = report(names[idx], m.Play(names[idx]))
				}
			case r == '+' || r == '=':
				m.SetMasterVolume(m.MasterVolume() + 0.1)
			case r == '-':
				m.SetMasterVolume(m.MasterVolume() - 0.1)
			case r == ']':
				m.SetEffectsVolume(m.EffectsVolume() + 0.1)
			case r == '[':
				m.SetEffectsVolume(m.EffectsVolume() - 0.1)
			case r == 'p':
				if paused {
					m.ResumeAll()
				} else {
					m.PauseAll()
				}
				paused = !paused
			case r == 's':
				m.StopAll()
				lastMsg = "stopped all"
			case r == 'r':
				name, err := fx.PlayRandom("ui", 1.0)
				lastMsg = report(name, err)
			}
		}
	}
}

func report(name string, err error) string {
	if err != nil {
		return fmt.Sprintf("%s: %v", name, err)
	}
	return fmt.Sprintf("played %s", name)
}

func draw(screen tcell.Screen, m *sfx.Manager, fx *sfx.Effects, names []string, paused bool, msg string) {
	screen.Clear()

	title := tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	plain := tcell.StyleDefault
	dim := tcell.StyleDefault.Foreground(tcell.ColorGray)

	puts(screen, 1, 0, title, "sfx-pad  1-9 play | +/- master | [/] effects | r random | p pause | s stop | q quit")

	status := fx.Status()
	puts(screen, 1, 2, plain, fmt.Sprintf("master %3.0f%%  effects %3.0f%%  free channels %d  playing %d",
		status.MasterVolume*100, status.EffectsVolume*100, status.FreeChannels, status.PlayingNow))
	if paused {
		puts(screen, 1, 3, title, "PAUSED")
	}

	row := 5
	for i, name := range names {
		if i >= 9 {
			break
		}
		count := 0
		if info, ok := m.Info(name); ok {
			count = info.PlayCount
		}
		puts(screen, 1, row, plain, fmt.Sprintf("[%d] %-10s plays %d", i+1, name, count))
		row++
	}

	row++
	playing := m.Playing()
	puts(screen, 1, row, dim, fmt.Sprintf("now playing: %v", playing))
	if msg != "" {
		puts(screen, 1, row+1, dim, msg)
	}

	screen.Show()
}

func puts(screen tcell.Screen, x, y int, style tcell.Style, s string) {
	col := x
	for _, r := range s {
		screen.SetContent(col, y, r, nil, style)
		col++
	}
}
