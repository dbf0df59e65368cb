package cmd

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/arzg/nunitius/internal/editor"
	"github.com/arzg/nunitius/internal/log"
	"github.com/arzg/nunitius/internal/model"
	"github.com/arzg/nunitius/internal/protocol/sender"
)

var (
	sendAddrFlag     string
	sendNicknameFlag string
	sendColorFlag    string
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Connect as a sender and post messages",
	RunE:  runSend,
}

func init() {
	sendCmd.Flags().StringVar(&sendAddrFlag, "addr", "", "server address to connect to")
	sendCmd.Flags().StringVar(&sendNicknameFlag, "nickname", "", "nickname to log in with")
	sendCmd.Flags().StringVar(&sendColorFlag, "color", "", "display color: red, green, yellow, blue, magenta, or cyan")
}

func runSend(cmd *cobra.Command, args []string) error {
	addr := resolveAddr(sendAddrFlag)
	if addr == "" {
		return errMissingAddr
	}

	if isDebug() {
		cleanup, err := log.InitWithTeaLog("nunitius-send.log", "send")
		if err != nil {
			return fmt.Errorf("initializing logging: %w", err)
		}
		defer cleanup()
	}

	nickname := sendNicknameFlag
	if nickname == "" {
		nickname = cfg.Nickname
	}
	color := model.Color(sendColorFlag)
	if color == "" {
		color = cfg.Color
	}
	if color == "" {
		color = model.ColorCyan
	}

	m := newSendModel(addr, nickname, color)
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func resolveAddr(flagVal string) string {
	if flagVal != "" {
		return flagVal
	}
	if cfg.ListenAddr != "" {
		return cfg.ListenAddr
	}
	return ""
}

type sendPhase int

const (
	phaseEnterNickname sendPhase = iota
	phaseConnecting
	phaseLoggingIn
	phaseTaken
	phaseSendingMessages
	phaseError
)

// sendModel drives the send TUI: a nickname entry field followed, once
// logged in, by a multi-paragraph editor that submits on Enter-with-no-
// modifier and inserts a newline on Shift+Enter (approximated here as
// Ctrl+J, since terminals rarely distinguish Shift+Enter from Enter).
type sendModel struct {
	addr  string
	color model.Color

	phase  sendPhase
	errMsg string
	nameIn textinput.Model

	loggingIn *sender.LoggingIn
	session   *sender.SendingMessages
	ed        *editor.Editor

	typingOn bool
	width    int
	height   int
}

func newSendModel(addr, nickname string, color model.Color) *sendModel {
	ti := textinput.New()
	ti.Placeholder = "nickname"
	ti.SetValue(nickname)
	ti.Focus()

	m := &sendModel{
		addr:   addr,
		color:  color,
		nameIn: ti,
		ed:     editor.New(60, 5),
		width:  80,
		height: 24,
	}
	if nickname != "" {
		m.phase = phaseConnecting
	} else {
		m.phase = phaseEnterNickname
	}
	return m
}

type connectedMsg struct {
	loggingIn *sender.LoggingIn
	err       error
}

type loginResultMsg struct {
	session   *sender.SendingMessages
	loggingIn *sender.LoggingIn
	err       error
}

type sendResultMsg struct{ err error }

type typingTickMsg time.Time

func connectCmd(addr string) tea.Cmd {
	return func() tea.Msg {
		l, err := sender.Connect(addr)
		return connectedMsg{loggingIn: l, err: err}
	}
}

func loginCmd(l *sender.LoggingIn, user model.User) tea.Cmd {
	return func() tea.Msg {
		session, retry, err := l.Login(user)
		return loginResultMsg{session: session, loggingIn: retry, err: err}
	}
}

func sendMessageCmd(s *sender.SendingMessages, body string) tea.Cmd {
	return func() tea.Msg {
		return sendResultMsg{err: s.SendMessage(body)}
	}
}

func typingTickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return typingTickMsg(t)
	})
}

func (m *sendModel) Init() tea.Cmd {
	if m.phase == phaseConnecting {
		return connectCmd(m.addr)
	}
	return textinput.Blink
}

func (m *sendModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.ed.ResizeWidth(msg.Width - 4)
		m.ed.ResizeHeight(msg.Height - 8)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case connectedMsg:
		if msg.err != nil {
			m.phase = phaseError
			m.errMsg = msg.err.Error()
			return m, nil
		}
		m.loggingIn = msg.loggingIn
		m.phase = phaseLoggingIn
		return m, loginCmd(m.loggingIn, model.User{Nickname: m.nameIn.Value(), Color: m.color})

	case loginResultMsg:
		if msg.err != nil {
			m.phase = phaseError
			m.errMsg = msg.err.Error()
			return m, nil
		}
		if msg.session != nil {
			m.session = msg.session
			m.phase = phaseSendingMessages
			return m, typingTickCmd()
		}
		m.loggingIn = msg.loggingIn
		m.phase = phaseTaken
		return m, nil

	case sendResultMsg:
		if msg.err != nil {
			m.phase = phaseError
			m.errMsg = msg.err.Error()
		}
		return m, nil

	case typingTickMsg:
		if m.session == nil {
			return m, nil
		}
		state := model.TypingStop
		if m.typingOn {
			state = model.TypingStart
		}
		_ = m.session.SendTyping(state)
		m.typingOn = false
		return m, typingTickCmd()
	}
	return m, nil
}

func (m *sendModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	}

	switch m.phase {
	case phaseEnterNickname:
		if msg.String() == "enter" {
			if m.nameIn.Value() == "" {
				return m, nil
			}
			m.phase = phaseConnecting
			return m, connectCmd(m.addr)
		}
		var cmd tea.Cmd
		m.nameIn, cmd = m.nameIn.Update(msg)
		return m, cmd

	case phaseTaken:
		if msg.String() == "enter" {
			m.phase = phaseLoggingIn
			return m, loginCmd(m.loggingIn, model.User{Nickname: m.nameIn.Value(), Color: m.color})
		}
		var cmd tea.Cmd
		m.nameIn, cmd = m.nameIn.Update(msg)
		return m, cmd

	case phaseSendingMessages:
		m.typingOn = true
		switch msg.String() {
		case "enter":
			body := m.ed.Contents()
			if body == "" {
				return m, nil
			}
			m.ed = editor.New(m.width-4, m.height-8)
			return m, sendMessageCmd(m.session, body)
		case "ctrl+j":
			m.ed.Enter()
		case "backspace":
			m.ed.Backspace()
		case "left":
			m.ed.MoveLeft()
		case "right":
			m.ed.MoveRight()
		case "up":
			m.ed.MoveUp()
		case "down":
			m.ed.MoveDown()
		default:
			if msg.Type == tea.KeyRunes {
				m.ed.Add(string(msg.Runes))
			}
		}
	}
	return m, nil
}

var (
	styleError = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	styleDim   = lipgloss.NewStyle().Faint(true)
)

func (m *sendModel) View() string {
	switch m.phase {
	case phaseEnterNickname:
		return fmt.Sprintf("Enter a nickname:\n%s\n%s", m.nameIn.View(), styleDim.Render("(enter to continue, ctrl+c to quit)"))
	case phaseConnecting:
		return "connecting..."
	case phaseLoggingIn:
		return "logging in..."
	case phaseTaken:
		return fmt.Sprintf("%q is already taken. Try another:\n%s", m.nameIn.Value(), m.nameIn.View()) + "\n" + styleDim.Render("(enter to retry)")
	case phaseError:
		return styleError.Render("error: "+m.errMsg) + "\n" + styleDim.Render("(ctrl+c to quit)")
	case phaseSendingMessages:
		lines := m.ed.Render()
		body := ""
		for _, l := range lines {
			body += "> " + l + "\n"
		}
		return fmt.Sprintf("connected as %s\n\n%s\n%s", m.nameIn.Value(), body, styleDim.Render("(enter to send, ctrl+j for newline, ctrl+c to quit)"))
	}
	return ""
}
