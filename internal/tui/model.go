// Package tui plays the matching game in a terminal.
package tui

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"memorize/internal/engine"
)

const refreshInterval = 100 * time.Millisecond

// Dealer starts a new game.
type Dealer func() *engine.MatchingGame[string]

type tickMsg time.Time

// Model is the Bubble Tea model for one table. The game is only touched from Update.
type Model struct {
	game   *engine.MatchingGame[string]
	deal   Dealer
	clock  engine.Clock
	keys   keyMap
	cursor int
	width  int
}

func New(deal Dealer, clock engine.Clock) Model {
	if clock == nil {
		clock = engine.SystemClock{}
	}
	return Model{
		game:  deal(),
		deal:  deal,
		clock: clock,
		keys:  defaultKeyMap(),
	}
}

// Run blocks until the player quits or ctx is cancelled.
func Run(ctx context.Context, deal Dealer) error {
	_, err := tea.NewProgram(New(deal, engine.SystemClock{}), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tickMsg:
		// Redraw so running bonus bars shrink.
		return m, tick()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	n := len(m.game.Cards())
	cols := columns(n)

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.NewGame):
		m.game = m.deal()
		m.cursor = 0
	case n == 0:
	case key.Matches(msg, m.keys.Left):
		if m.cursor%cols > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Right):
		if m.cursor%cols < cols-1 && m.cursor+1 < n {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Up):
		if m.cursor-cols >= 0 {
			m.cursor -= cols
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor+cols < n {
			m.cursor += cols
		}
	case key.Matches(msg, m.keys.Choose):
		m.game.Choose(m.game.Cards()[m.cursor])
	}
	return m, nil
}

func (m Model) View() string {
	now := m.clock.Now()
	cards := m.game.Cards()
	cols := columns(len(cards))

	var rows []string
	for start := 0; start < len(cards); start += cols {
		end := min(start+cols, len(cards))
		cells := make([]string, 0, cols)
		for i := start; i < end; i++ {
			cells = append(cells, renderCard(cards[i], i == m.cursor, now))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}

	stats := m.game.Stats(now)
	status := StatusStyle.Render(fmt.Sprintf("pairs %d/%d · bonuses %d", stats.MatchedPairs, stats.Pairs, stats.BonusesEarned))
	if m.game.Done() {
		status += "  " + WinStyle.Render("all matched!")
	}

	var help []string
	for _, b := range m.keys.help() {
		h := b.Help()
		help = append(help, h.Key+" "+h.Desc)
	}

	body := lipgloss.JoinVertical(lipgloss.Left,
		TitleStyle.Render("memorize"),
		lipgloss.JoinVertical(lipgloss.Left, rows...),
		status,
		HelpStyle.Render(strings.Join(help, " • ")),
	)
	if m.width > 0 {
		return lipgloss.PlaceHorizontal(m.width, lipgloss.Center, body)
	}
	return body
}

func renderCard(c engine.Card[string], selected bool, now time.Time) string {
	style := CardStyle
	switch {
	case selected:
		style = SelectedCardStyle
	case c.IsMatched:
		style = MatchedCardStyle
	}

	switch {
	case c.IsFaceUp:
		bar := bonusBar(c.BonusFraction(now), barWidth)
		if c.IsConsumingBonusTime(now) || c.HasEarnedBonus(now) {
			bar = BonusStyle.Render(bar)
		} else {
			bar = ExpiredStyle.Render(bar)
		}
		return style.Render(c.Content + "\n" + bar)
	case c.IsMatched:
		return style.Render(" \n ")
	default:
		return style.Render(FaceDownStyle.Render("▒▒") + "\n ")
	}
}

// bonusBar draws the remaining bonus share as a bar of the given width.
func bonusBar(fraction float64, width int) string {
	filled := int(math.Round(fraction * float64(width)))
	filled = max(0, min(width, filled))
	return strings.Repeat("█", filled) + strings.Repeat("·", width-filled)
}

// columns lays the deck out roughly square.
func columns(n int) int {
	return max(1, int(math.Ceil(math.Sqrt(float64(n)))))
}
