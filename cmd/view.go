package cmd

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
	"github.com/spf13/cobra"

	"github.com/arzg/nunitius/internal/log"
	"github.com/arzg/nunitius/internal/model"
	"github.com/arzg/nunitius/internal/protocol/viewer"
	"github.com/arzg/nunitius/internal/timeline"
)

var viewAddrFlag string

var viewCmd = &cobra.Command{
	Use:   "view",
	Short: "Connect as a read-only viewer",
	RunE:  runView,
}

func init() {
	viewCmd.Flags().StringVar(&viewAddrFlag, "addr", "", "server address to connect to")
}

func runView(cmd *cobra.Command, args []string) error {
	addr := resolveAddr(viewAddrFlag)
	if addr == "" {
		return errMissingAddr
	}

	if isDebug() {
		cleanup, err := log.InitWithTeaLog("nunitius-view.log", "view")
		if err != nil {
			return fmt.Errorf("initializing logging: %w", err)
		}
		defer cleanup()
	}

	m := newViewModel(addr)
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

type viewPhase int

const (
	viewConnecting viewPhase = iota
	viewWatching
	viewError
)

type viewModel struct {
	addr   string
	phase  viewPhase
	errMsg string

	session *viewer.SendingEvents
	tl      *timeline.Timeline

	typingUsers map[string]struct{}
	width       int
	height      int
}

func newViewModel(addr string) *viewModel {
	return &viewModel{
		addr:        addr,
		tl:          timeline.New(20),
		typingUsers: make(map[string]struct{}),
		width:       80,
		height:      24,
	}
}

type viewerConnectedMsg struct {
	session *viewer.SendingEvents
	history []model.Event
	err     error
}

type viewerEventMsg struct {
	event model.Event
	err   error
}

func viewerConnectCmd(addr string) tea.Cmd {
	return func() tea.Msg {
		s, err := viewer.Connect(addr)
		if err != nil {
			return viewerConnectedMsg{err: err}
		}
		session, history, err := s.ReceivePastEvents()
		return viewerConnectedMsg{session: session, history: history, err: err}
	}
}

func waitForEventCmd(s *viewer.SendingEvents) tea.Cmd {
	return func() tea.Msg {
		ev, err := s.ReceiveEvent()
		return viewerEventMsg{event: ev, err: err}
	}
}

func (m *viewModel) Init() tea.Cmd {
	return viewerConnectCmd(m.addr)
}

func (m *viewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.tl.Resize(msg.Height - 4)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "up", "k":
			m.tl.ScrollUp()
		case "down", "j":
			m.tl.ScrollDown()
		}
		return m, nil

	case viewerConnectedMsg:
		if msg.err != nil {
			m.phase = viewError
			m.errMsg = msg.err.Error()
			return m, nil
		}
		m.session = msg.session
		for _, ev := range msg.history {
			m.applyEvent(ev)
		}
		m.phase = viewWatching
		return m, waitForEventCmd(m.session)

	case viewerEventMsg:
		if msg.err != nil {
			m.phase = viewError
			m.errMsg = msg.err.Error()
			return m, nil
		}
		m.applyEvent(msg.event)
		return m, waitForEventCmd(m.session)
	}
	return m, nil
}

func (m *viewModel) applyEvent(ev model.Event) {
	if ev.Kind.Tag == model.KindTyping {
		if ev.Kind.Typing == model.TypingStart {
			m.typingUsers[ev.User.Nickname] = struct{}{}
		} else {
			delete(m.typingUsers, ev.User.Nickname)
		}
		return
	}
	m.tl.AddEvent(ev)
}

var colorStyles = map[model.Color]lipgloss.Style{
	model.ColorRed:     lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
	model.ColorGreen:   lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
	model.ColorYellow:  lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
	model.ColorBlue:    lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
	model.ColorMagenta: lipgloss.NewStyle().Foreground(lipgloss.Color("5")),
	model.ColorCyan:    lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
}

func renderUser(u model.User, width int) string {
	name := truncate.String(u.Nickname, uint(width))
	if style, ok := colorStyles[u.Color]; ok {
		return style.Render(name)
	}
	return name
}

func renderEvent(ev model.Event, width int) string {
	who := renderUser(ev.User, width/3)
	switch ev.Kind.Tag {
	case model.KindLogin:
		return fmt.Sprintf("* %s joined", who)
	case model.KindLogout:
		return fmt.Sprintf("* %s left", who)
	case model.KindMessage:
		return fmt.Sprintf("%s: %s", who, ev.Kind.Message.Body)
	default:
		return ""
	}
}

func (m *viewModel) View() string {
	switch m.phase {
	case viewConnecting:
		return "connecting..."
	case viewError:
		return styleError.Render("error: " + m.errMsg)
	}

	var b strings.Builder
	for _, ev := range m.tl.VisibleEvents() {
		b.WriteString(renderEvent(ev, m.width))
		b.WriteByte('\n')
	}

	if len(m.typingUsers) > 0 {
		names := make([]string, 0, len(m.typingUsers))
		for n := range m.typingUsers {
			names = append(names, n)
		}
		b.WriteString(styleDim.Render(strings.Join(names, ", ") + " typing..."))
		b.WriteByte('\n')
	}

	b.WriteString(styleDim.Render("(j/k or arrows to scroll, q to quit)"))
	return b.String()
}
