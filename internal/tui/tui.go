package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/lox/headsup/internal/deck"
	"github.com/lox/headsup/internal/game"
	"github.com/lox/headsup/internal/session"
)

// Controller is the part of a session the table view drives
type Controller interface {
	StartRound() error
	SubmitHumanAction(game.Action) error
	Snapshot() session.Snapshot
}

// EventMsg carries a session event into the Bubble Tea loop
type EventMsg session.Event

// commandResultMsg reports the outcome of a command run off the UI goroutine
type commandResultMsg struct {
	op  string
	err error
}

// Model is the Bubble Tea model for the heads-up table
type Model struct {
	session Controller
	logger  *log.Logger

	keys        keyMap
	help        help.Model
	logViewport viewport.Model

	snapshot session.Snapshot
	gameLog  []string
	quitting bool

	width       int
	height      int
	initialized bool
}

// New creates a table model for the given session
func New(ctrl Controller, logger *log.Logger) *Model {
	keys := defaultKeyMap()
	vp := viewport.New(10, 5)
	vp.SetContent("")
	// letter keys belong to the table, so the log only scrolls on arrows
	vp.KeyMap = viewport.KeyMap{
		Up:       key.NewBinding(key.WithKeys("up")),
		Down:     key.NewBinding(key.WithKeys("down")),
		PageUp:   key.NewBinding(key.WithKeys("pgup")),
		PageDown: key.NewBinding(key.WithKeys("pgdown")),
	}

	m := &Model{
		session:     ctrl,
		logger:      logger.WithPrefix("tui"),
		keys:        keys,
		help:        help.New(),
		logViewport: vp,
		snapshot:    ctrl.Snapshot(),
	}
	m.keys.sync(m.snapshot)
	m.AddLogEntry(InfoStyle.Render(m.snapshot.Message))
	return m
}

// Run starts the program and blocks until the player quits. Session events
// are forwarded into the program from whichever goroutine raised them.
func Run(ctx context.Context, s *session.Session, logger *log.Logger) error {
	m := New(s, logger)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	unsubscribe := s.OnChange(func(e session.Event) {
		p.Send(EventMsg(e))
	})
	defer unsubscribe()

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.logger.Debug("Updating dimensions", "width", m.width, "height", m.height)

	case EventMsg:
		m.applyEvent(session.Event(msg))

	case commandResultMsg:
		if msg.err != nil {
			m.logger.Debug("Command failed", "op", msg.op, "error", msg.err)
		}
		m.refresh(m.session.Snapshot())

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		case key.Matches(msg, m.keys.Deal):
			return m, m.deal()
		case key.Matches(msg, m.keys.Check):
			return m, m.act(game.Check)
		case key.Matches(msg, m.keys.Call):
			return m, m.act(game.Call)
		case key.Matches(msg, m.keys.Raise):
			return m, m.act(game.Raise)
		case key.Matches(msg, m.keys.Fold):
			return m, m.act(game.Fold)
		}
	}

	var cmd tea.Cmd
	m.logViewport, cmd = m.logViewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// deal and act run the session command off the UI goroutine so the
// session's subscribers can Send back into the program.
func (m *Model) deal() tea.Cmd {
	return func() tea.Msg {
		return commandResultMsg{op: "deal", err: m.session.StartRound()}
	}
}

func (m *Model) act(action game.Action) tea.Cmd {
	return func() tea.Msg {
		return commandResultMsg{op: action.String(), err: m.session.SubmitHumanAction(action)}
	}
}

func (m *Model) refresh(snap session.Snapshot) {
	m.snapshot = snap
	m.keys.sync(snap)
}

func (m *Model) applyEvent(e session.Event) {
	m.refresh(e.Snapshot)
	for _, line := range describeEvent(e) {
		m.AddLogEntry(line)
	}
}

// describeEvent turns an event into game log lines
func describeEvent(e session.Event) []string {
	snap := e.Snapshot
	switch e.Type {
	case session.EventRoundStart:
		return []string{
			HeaderStyle.Render(fmt.Sprintf(" Round %d ", snap.Round)),
			fmt.Sprintf("Blinds posted, pot $%d", snap.Pot),
			"Your hand: " + formatCards(snap.HumanHand),
		}
	case session.EventPlayerAction:
		who := "Computer"
		verb := e.Action.String() + "s"
		if e.Seat == game.Human {
			who, verb = "You", e.Action.String()
		}
		line := fmt.Sprintf("%s %s", who, verb)
		if e.Amount > 0 {
			line += fmt.Sprintf(" $%d", e.Amount)
		}
		return []string{PlayerInfoStyle.Render(line)}
	case session.EventStreetChange:
		return []string{
			fmt.Sprintf("*** %s *** %s", strings.ToUpper(snap.Stage.String()), formatCards(snap.Community)),
		}
	case session.EventRoundEnd:
		var lines []string
		if r := snap.LastResult; r != nil && r.Showdown {
			lines = append(lines, "Computer shows "+formatCards(r.OpponentHand))
		}
		style := ErrorStyle
		if e.Seat == game.Human {
			style = SuccessStyle
		}
		return append(lines, style.Render(snap.Message))
	case session.EventRoundReset:
		return []string{InfoStyle.Render(snap.Message)}
	case session.EventRoundAborted:
		return []string{ErrorStyle.Render(snap.Message)}
	case session.EventRejected:
		return []string{WarningStyle.Render(snap.Message)}
	}
	return nil
}

// View renders the TUI
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	actionContent := m.renderActionPane()
	actionHeight := lipgloss.Height(actionContent)
	actionPane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#04B575")).
		Width(max(m.width-2, 1)).
		Render(actionContent)

	sidebarContent := m.renderSidebarPane()
	sidebarWidth := max(lipgloss.Width(sidebarContent), 25)
	paneHeight := max(m.height-actionHeight-4, 1)

	sidebarPane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Width(sidebarWidth).
		Height(paneHeight).
		Render(sidebarContent)

	m.logViewport.Width = max(m.width-sidebarWidth-4, 1)
	m.logViewport.Height = paneHeight
	if !m.initialized && m.logViewport.Width > 1 && m.logViewport.Height > 1 {
		m.logViewport.GotoBottom()
		m.initialized = true
	}

	logPane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Width(m.logViewport.Width).
		Height(paneHeight).
		Render(m.logViewport.View())

	topRow := lipgloss.JoinHorizontal(lipgloss.Top, logPane, sidebarPane)
	return lipgloss.JoinVertical(lipgloss.Top, topRow, actionPane)
}

func (m *Model) renderSidebarPane() string {
	snap := m.snapshot
	var content strings.Builder

	content.WriteString(TitleStyle.Render("Heads-up Hold'em"))
	content.WriteString("\n\n")
	content.WriteString(WarningStyle.Render(fmt.Sprintf("Pot: $%d", snap.Pot)))
	if snap.CurrentBet > 0 {
		content.WriteString(" | ")
		content.WriteString(WarningStyle.Render(fmt.Sprintf("Bet: $%d", snap.CurrentBet)))
	}
	content.WriteString("\n\n")
	content.WriteString(fmt.Sprintf("You:      $%d\n", snap.HumanStack))
	content.WriteString(fmt.Sprintf("Computer: $%d\n", snap.OpponentStack))
	content.WriteString("\n")
	content.WriteString(InfoStyle.Render(fmt.Sprintf("Round %d · %s", snap.Round, snap.Stage.Title())))
	content.WriteString("\n")
	content.WriteString(InfoStyle.Render(fmt.Sprintf("Deck: %d cards", snap.DeckRemaining)))
	return content.String()
}

func (m *Model) renderActionPane() string {
	snap := m.snapshot
	var content strings.Builder

	content.WriteString(HandInfoStyle.Render("Board: "))
	content.WriteString(formatBoard(snap.Community))
	content.WriteString("\n")

	content.WriteString(HandInfoStyle.Render("Computer: "))
	switch {
	case len(snap.OpponentHand) > 0:
		content.WriteString(formatCards(snap.OpponentHand))
	case snap.OpponentCards > 0:
		content.WriteString(hiddenCards(snap.OpponentCards))
	}
	content.WriteString("\n")

	content.WriteString(HandInfoStyle.Render("You: "))
	content.WriteString(formatCards(snap.HumanHand))
	content.WriteString("\n\n")

	content.WriteString(MessageStyle.Render(snap.Message))
	content.WriteString("\n")
	if snap.HumanToAct() {
		content.WriteString(renderAvailableActions(snap))
		content.WriteString("\n")
	}
	content.WriteString(m.help.View(m.keys))
	return content.String()
}

func renderAvailableActions(snap session.Snapshot) string {
	var actions []string
	for _, a := range snap.ValidActions {
		switch a {
		case game.Fold:
			actions = append(actions, ErrorStyle.Render("[fold]"))
		case game.Check:
			actions = append(actions, SuccessStyle.Render("[check]"))
		case game.Call:
			actions = append(actions, SuccessStyle.Render(fmt.Sprintf("[call $%d]", snap.CurrentBet)))
		case game.Raise:
			actions = append(actions, WarningStyle.Render("[raise]"))
		}
	}
	if len(actions) == 0 {
		actions = append(actions, ErrorStyle.Render("[no actions available]"))
	}
	return ActionsStyle.Render("Actions: " + strings.Join(actions, " "))
}

// formatCards formats cards with colors
func formatCards(cards []deck.Card) string {
	if len(cards) == 0 {
		return ""
	}
	formatted := make([]string, 0, len(cards))
	for _, card := range cards {
		if card.IsRed() {
			formatted = append(formatted, RedCardStyle.Render(card.Pretty()))
		} else {
			formatted = append(formatted, BlackCardStyle.Render(card.Pretty()))
		}
	}
	return "[" + strings.Join(formatted, " ") + "]"
}

// formatBoard pads the board to five slots
func formatBoard(cards []deck.Card) string {
	slots := make([]string, 0, 5)
	for _, card := range cards {
		if card.IsRed() {
			slots = append(slots, RedCardStyle.Render(card.Pretty()))
		} else {
			slots = append(slots, BlackCardStyle.Render(card.Pretty()))
		}
	}
	for len(slots) < 5 {
		slots = append(slots, InfoStyle.Render("--"))
	}
	return "[" + strings.Join(slots, " ") + "]"
}

func hiddenCards(n int) string {
	return "[" + strings.TrimSpace(strings.Repeat("▒▒ ", n)) + "]"
}

// AddLogEntry adds an entry to the game log and scrolls to it
func (m *Model) AddLogEntry(entry string) {
	m.gameLog = append(m.gameLog, entry)
	m.logViewport.SetContent(strings.Join(m.gameLog, "\n"))
	if m.logViewport.Height > 0 && m.logViewport.Width > 0 {
		m.logViewport.GotoBottom()
	}
}

// GameLog returns a copy of the log lines
func (m *Model) GameLog() []string {
	out := make([]string, len(m.gameLog))
	copy(out, m.gameLog)
	return out
}

// Snapshot returns the state the view is currently rendering
func (m *Model) Snapshot() session.Snapshot {
	return m.snapshot
}
