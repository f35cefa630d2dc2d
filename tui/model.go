package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/iotedge-devcomp/identity"
	apperrors "github.com/jrsteele09/iotedge-devcomp/internal/errors"
	"github.com/jrsteele09/iotedge-devcomp/navigator"
)

// Messages produced by the navigator commands.
type (
	resumedMsg struct {
		resumed bool
		err     error
	}
	loginPromptMsg struct {
		pending *identity.PendingLogin
		err     error
	}
	loginDoneMsg struct {
		err error
	}
	listedMsg struct {
		level   navigator.Level
		options []Option
		err     error
	}
	hubSelectedMsg struct {
		err error
	}
)

// Model is the bubbletea model of the browser. Only one navigator command is
// in flight at a time; keys other than quit are ignored while it runs.
type Model struct {
	ctx   context.Context
	nav   navigator.Navigator
	keys  KeyMap
	theme Theme

	selectors [4]Selector // Indexed by navigator.Level.
	focus     navigator.Level

	busy    string // Label of the running command, empty when idle.
	spinner spinner.Model
	prompt  *identity.Prompt
	status  string
	fatal   error

	width  int
	height int
}

// NewModel creates a browser for nav. ctx bounds every navigator call.
func NewModel(ctx context.Context, nav navigator.Navigator) Model {
	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = lipgloss.NewStyle().Foreground(DefaultTheme.FocusBorderColor)

	model := Model{
		ctx:     ctx,
		nav:     nav,
		keys:    DefaultKeyMap,
		theme:   DefaultTheme,
		spinner: spin,
		busy:    "Signing in",
	}
	for _, level := range navigator.AllLevels {
		model.selectors[level] = newSelector(titleOf(level))
	}
	return model
}

// Err returns the error that ended the session, if any.
func (model Model) Err() error {
	return model.fatal
}

func (model Model) Init() tea.Cmd {
	return tea.Batch(model.spinner.Tick, model.resume())
}

func (model Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case tea.WindowSizeMsg:
		model.width = message.Width
		model.height = message.Height
		return model, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		model.spinner, cmd = model.spinner.Update(message)
		return model, cmd

	case tea.KeyMsg:
		return model.handleKey(message)

	case resumedMsg:
		if message.err != nil {
			return model.fail(message.err)
		}
		if message.resumed {
			return model.startList(navigator.LevelSubscription)
		}
		model.busy = "Starting login"
		return model, model.beginLogin()

	case loginPromptMsg:
		if message.err != nil {
			return model.fail(message.err)
		}
		prompt := message.pending.Prompt
		model.prompt = &prompt
		model.busy = "Waiting for login"
		return model, model.completeLogin(message.pending)

	case loginDoneMsg:
		model.prompt = nil
		if message.err != nil {
			return model.fail(message.err)
		}
		model.status = "Signed in as " + model.nav.State().Username
		return model.startList(navigator.LevelSubscription)

	case listedMsg:
		model.busy = ""
		if message.err != nil {
			model.status = message.err.Error()
			return model, nil
		}
		model.selectors[message.level].Load(message.options)
		model.focus = message.level
		return model, nil

	case hubSelectedMsg:
		if message.err != nil {
			model.busy = ""
			if apperrors.Is(message.err, apperrors.ErrOwnerKeyMissing) {
				return model.fail(message.err)
			}
			model.selectors[navigator.LevelHub].Chosen = -1
			model.status = message.err.Error()
			return model, nil
		}
		return model.startList(navigator.LevelDevice)
	}

	return model, nil
}

func (model Model) handleKey(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(message, model.keys.Quit) {
		return model, tea.Quit
	}
	if model.fatal != nil {
		return model, tea.Quit
	}
	if model.busy != "" {
		return model, nil
	}

	selector := &model.selectors[model.focus]
	switch {
	case key.Matches(message, model.keys.Up):
		selector.MoveUp()
	case key.Matches(message, model.keys.Down):
		selector.MoveDown()
	case key.Matches(message, model.keys.NextLevel):
		model.moveFocus(1)
	case key.Matches(message, model.keys.PrevLevel):
		model.moveFocus(-1)
	case key.Matches(message, model.keys.Choose):
		return model.choose()
	case key.Matches(message, model.keys.Clear):
		return model.clear()
	case key.Matches(message, model.keys.Refresh):
		if selector.Enabled {
			return model.refresh()
		}
	}
	return model, nil
}

// moveFocus cycles through the enabled selectors.
func (model *Model) moveFocus(step int) {
	count := len(model.selectors)
	next := int(model.focus)
	for range count {
		next = (next + step + count) % count
		if model.selectors[next].Enabled {
			model.focus = navigator.Level(next)
			return
		}
	}
}

// resetBelow disables every selector under level.
func (model *Model) resetBelow(level navigator.Level) {
	for below := level + 1; int(below) < len(model.selectors); below++ {
		model.selectors[below].Reset()
	}
}

func (model Model) choose() (tea.Model, tea.Cmd) {
	selector := &model.selectors[model.focus]
	option, ok := selector.Highlighted()
	if !ok {
		return model, nil
	}
	selector.Chosen = selector.Cursor
	model.resetBelow(model.focus)
	model.status = ""

	switch model.focus {
	case navigator.LevelSubscription:
		if err := model.nav.SelectSubscription(option.Value); err != nil {
			model.status = err.Error()
			return model, nil
		}
		return model.startList(navigator.LevelResourceGroup)

	case navigator.LevelResourceGroup:
		if err := model.nav.SelectResourceGroup(option.Value); err != nil {
			model.status = err.Error()
			return model, nil
		}
		return model.startList(navigator.LevelHub)

	case navigator.LevelHub:
		model.busy = "Resolving hub key"
		return model, model.selectHub(option.Value)

	case navigator.LevelDevice:
		model.status = fmt.Sprintf("Edge device %s on %s", option.Value, model.nav.State().Hub)
	}
	return model, nil
}

// clear deselects the focused level. None of the navigator calls involved
// reach the cloud.
func (model Model) clear() (tea.Model, tea.Cmd) {
	selector := &model.selectors[model.focus]
	if selector.Chosen < 0 {
		return model, nil
	}
	selector.Chosen = -1
	model.resetBelow(model.focus)

	if err := model.deselect(model.focus); err != nil {
		model.status = err.Error()
	}
	return model, nil
}

// refresh lists the focused level again. Reloading drops its choice, so the
// levels below and the navigator selection go with it.
func (model Model) refresh() (tea.Model, tea.Cmd) {
	model.resetBelow(model.focus)
	if err := model.deselect(model.focus); err != nil {
		model.status = err.Error()
		return model, nil
	}
	return model.startList(model.focus)
}

func (model Model) deselect(level navigator.Level) error {
	switch level {
	case navigator.LevelSubscription:
		return model.nav.SelectSubscription("")
	case navigator.LevelResourceGroup:
		return model.nav.SelectResourceGroup("")
	case navigator.LevelHub:
		return model.nav.SelectIoTHub(model.ctx, "")
	}
	return nil
}

func (model Model) fail(err error) (tea.Model, tea.Cmd) {
	log.Error().Err(err).Msg("browser stopped")
	model.busy = ""
	model.fatal = err
	return model, nil
}

func (model Model) startList(level navigator.Level) (tea.Model, tea.Cmd) {
	model.busy = "Loading " + level.String() + "s"
	return model, model.list(level)
}

func (model Model) resume() tea.Cmd {
	nav, ctx := model.nav, model.ctx
	return func() tea.Msg {
		resumed, err := nav.ResumeSession(ctx)
		return resumedMsg{resumed: resumed, err: err}
	}
}

func (model Model) beginLogin() tea.Cmd {
	nav, ctx := model.nav, model.ctx
	return func() tea.Msg {
		pending, err := nav.BeginLogin(ctx)
		return loginPromptMsg{pending: pending, err: err}
	}
}

func (model Model) completeLogin(pending *identity.PendingLogin) tea.Cmd {
	nav, ctx := model.nav, model.ctx
	return func() tea.Msg {
		return loginDoneMsg{err: nav.CompleteLogin(ctx, pending)}
	}
}

func (model Model) selectHub(name string) tea.Cmd {
	nav, ctx := model.nav, model.ctx
	return func() tea.Msg {
		return hubSelectedMsg{err: nav.SelectIoTHub(ctx, name)}
	}
}

func (model Model) list(level navigator.Level) tea.Cmd {
	nav, ctx := model.nav, model.ctx
	return func() tea.Msg {
		var (
			options []Option
			names   []string
			err     error
		)
		switch level {
		case navigator.LevelSubscription:
			subscriptions, listErr := nav.ListSubscriptions(ctx)
			for _, s := range subscriptions {
				options = append(options, Option{Label: fmt.Sprintf("%s (%s)", s.Name, s.ID), Value: s.ID})
			}
			err = listErr
		case navigator.LevelResourceGroup:
			names, err = nav.ListResourceGroups(ctx)
		case navigator.LevelHub:
			names, err = nav.ListIoTHubs(ctx)
		case navigator.LevelDevice:
			names, err = nav.ListEdgeDevices(ctx)
		}
		for _, name := range names {
			options = append(options, Option{Label: name, Value: name})
		}
		return listedMsg{level: level, options: options, err: err}
	}
}

func (model Model) View() string {
	header := lipgloss.NewStyle().Bold(true).Foreground(model.theme.HeaderForeground).
		Render("IoT Edge device browser")

	var sections []string
	sections = append(sections, header)
	if model.prompt != nil {
		sections = append(sections, model.renderPrompt())
	}

	width := model.width
	listHeight := 0
	if model.height > 0 {
		// Four boxes of title plus list plus two border rows, and the chrome.
		listHeight = max(3, (model.height-8)/len(model.selectors)-3)
	}
	for _, level := range navigator.AllLevels {
		selector := model.selectors[level]
		sections = append(sections, selector.Render(model.theme, width, listHeight, level == model.focus && model.fatal == nil))
	}

	sections = append(sections, model.renderStatus(), model.renderHelp())
	return strings.Join(sections, "\n")
}

func (model Model) renderPrompt() string {
	code := lipgloss.NewStyle().Bold(true).Foreground(model.theme.PromptCodeAccent)
	body := strings.Join([]string{
		"Sign in to continue",
		"",
		"Open:  " + model.prompt.VerificationURI,
		"Code:  " + code.Render(model.prompt.UserCode),
		"",
		"Code expires at " + model.prompt.ExpiresAt.Local().Format("15:04:05"),
	}, "\n")
	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(model.theme.PromptBorder).
		Padding(1, 2).
		Render(body)
}

func (model Model) renderStatus() string {
	switch {
	case model.fatal != nil:
		style := lipgloss.NewStyle().Bold(true).Foreground(model.theme.ErrorForeground)
		return style.Render("Error: "+model.fatal.Error()) + "\n" +
			lipgloss.NewStyle().Foreground(model.theme.HelpText).Render("press any key to exit")
	case model.busy != "":
		return model.spinner.View() + " " + model.busy + "..."
	default:
		return lipgloss.NewStyle().Foreground(model.theme.NormalText).Render(model.status)
	}
}

func (model Model) renderHelp() string {
	var parts []string
	for _, binding := range model.keys.ShortHelp() {
		help := binding.Help()
		parts = append(parts, help.Key+" "+help.Desc)
	}
	return lipgloss.NewStyle().Foreground(model.theme.HelpText).Render(strings.Join(parts, "  "))
}

func titleOf(level navigator.Level) string {
	switch level {
	case navigator.LevelSubscription:
		return "Subscription"
	case navigator.LevelResourceGroup:
		return "Resource group"
	case navigator.LevelHub:
		return "IoT hub"
	case navigator.LevelDevice:
		return "Edge devices"
	}
	return level.String()
}
