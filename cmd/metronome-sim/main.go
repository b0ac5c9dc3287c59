// Command metronome-sim runs the control engine in a terminal UI, with
// keyboard keys standing in for the hardware buttons. Useful for trying
// tempo and mode behavior without a Raspberry Pi.
package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sweeney/metronome/internal/display"
	"github.com/sweeney/metronome/internal/engine"
)

// The simulation runs the engine at 1 kHz, advanced in batches once per
// UI frame.
const (
	simTickRate   = 1000
	framePeriod   = 16 * time.Millisecond
	ticksPerFrame = 16

	// A key press holds the simulated button long enough to pass the
	// debouncer; terminal key repeat keeps extending the hold.
	pressTicks = 250
)

type frameMsg time.Time

func frameTick() tea.Cmd {
	return tea.Tick(framePeriod, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

type model struct {
	eng  *engine.Engine
	snap engine.Snapshot

	// Remaining simulated ticks each button stays pressed.
	holdIncrease int
	holdDecrease int
	holdMode     int
	holdOption   int

	beatFlash int
	quitting  bool
}

func newModel() model {
	eng := engine.New(engine.Scaled(simTickRate))
	return model{
		eng:  eng,
		snap: eng.Snapshot(),
	}
}

func (m model) Init() tea.Cmd {
	return frameTick()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit

		case "+", "=", "up":
			m.holdIncrease = pressTicks

		case "-", "_", "down":
			m.holdDecrease = pressTicks

		case "m":
			m.holdMode = pressTicks

		case "o", " ":
			m.holdOption = pressTicks

		case "r":
			m.eng.Reset()
			m.snap = m.eng.Snapshot()
			m.holdIncrease = 0
			m.holdDecrease = 0
			m.holdMode = 0
			m.holdOption = 0
		}

	case frameMsg:
		for i := 0; i < ticksPerFrame; i++ {
			m.snap = m.eng.Tick(engine.Inputs{
				Increase: m.holdIncrease > 0,
				Decrease: m.holdDecrease > 0,
				Mode:     m.holdMode > 0,
				Option:   m.holdOption > 0,
			})
			if m.snap.Beat {
				m.beatFlash = 4
			}
			decrement(&m.holdIncrease)
			decrement(&m.holdDecrease)
			decrement(&m.holdMode)
			decrement(&m.holdOption)
		}
		if m.beatFlash > 0 {
			m.beatFlash--
		}
		return m, frameTick()
	}

	return m, nil
}

func decrement(hold *int) {
	if *hold > 0 {
		*hold--
	}
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	digitStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	ledOnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	ledOffStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	beatStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("metronome-sim"))
	b.WriteString("\n\n")

	for _, row := range display.FrameRows(display.Render(m.snap)) {
		b.WriteString(digitStyle.Render(row))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	leds := display.BeatLEDs(m.snap)
	var ledRow []string
	for _, on := range leds {
		if on {
			ledRow = append(ledRow, ledOnStyle.Render("●"))
		} else {
			ledRow = append(ledRow, ledOffStyle.Render("○"))
		}
	}
	b.WriteString(strings.Join(ledRow, " "))
	if m.beatFlash > 0 && m.snap.PulseOutput {
		b.WriteString("  " + beatStyle.Render("click"))
	}
	b.WriteString("\n\n")

	transport := "running"
	if !m.snap.Running {
		transport = "stopped"
	}
	b.WriteString(fmt.Sprintf("%d bpm  %s  %s  mode:%s",
		m.snap.BPM, m.snap.TimeSignature, transport, m.snap.Mode))
	if m.snap.AccentEnabled {
		b.WriteString("  accent")
	}
	if m.snap.VisualOnly {
		b.WriteString("  visual-only")
	}
	b.WriteString("\n\n")

	b.WriteString(helpStyle.Render("+/- tempo (hold for fast)  m mode  o option  r reset  q quit"))
	b.WriteString("\n")

	return b.String()
}

func main() {
	p := tea.NewProgram(newModel())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "metronome-sim: %v\n", err)
		os.Exit(1)
	}
}
