package ui

import (
	"context"
	stderrors "errors"
	"io"
	"os"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/ssmdeploy/internal/errors"
	"github.com/rileyhilliard/ssmdeploy/internal/instance"
	"golang.org/x/term"
)

// instanceItem implements list.Item for the Bubbles list component.
type instanceItem struct {
	inst instance.Instance
}

func (i instanceItem) Title() string {
	return i.inst.Label()
}

func (i instanceItem) Description() string {
	if i.inst.State == "" {
		return i.inst.ID
	}
	return i.inst.ID + " | " + i.inst.State
}

// FilterValue matches on the full label so name, id, and tags are all searchable.
func (i instanceItem) FilterValue() string {
	return i.inst.Label()
}

// InstancePickerModel is a Bubble Tea model for choosing one instance.
type InstancePickerModel struct {
	list      list.Model
	instances []instance.Instance
	selected  *instance.Instance
	cancelled bool
	quitting  bool
}

type instancePickerKeyMap struct {
	Enter  key.Binding
	Quit   key.Binding
	Cancel key.Binding
}

var instancePickerKeys = instancePickerKeyMap{
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "deploy"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "esc"),
		key.WithHelp("q/esc", "cancel"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("ctrl+c"),
	),
}

// NewInstancePickerModel creates a picker listing instances in the order given.
func NewInstancePickerModel(instances []instance.Instance) InstancePickerModel {
	items := make([]list.Item, len(instances))
	for i, inst := range instances {
		items[i] = instanceItem{inst: inst}
	}

	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(ColorPrimary).
		BorderForeground(ColorSecondary)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(ColorMuted)

	l := list.New(items, delegate, 80, 20)
	l.Title = "Select an EC2 instance"
	l.SetShowStatusBar(len(instances) > 1)
	l.SetFilteringEnabled(true)
	l.Styles.Title = lipgloss.NewStyle().
		Foreground(ColorPrimary).
		Bold(true).
		Padding(0, 0, 1, 0)
	l.Styles.HelpStyle = lipgloss.NewStyle().Foreground(ColorMuted)
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{instancePickerKeys.Enter}
	}
	// q/esc are handled here so they can be ignored while typing a filter.
	l.KeyMap.Quit.SetEnabled(false)
	l.KeyMap.ForceQuit.SetEnabled(false)

	return InstancePickerModel{
		list:      l,
		instances: instances,
	}
}

// Init implements tea.Model.
func (m InstancePickerModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m InstancePickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, instancePickerKeys.Cancel) {
			m.cancelled = true
			m.quitting = true
			return m, tea.Quit
		}

		// Typing a filter owns the keyboard until it's accepted or cleared.
		if m.list.FilterState() == list.Filtering {
			break
		}

		switch {
		case key.Matches(msg, instancePickerKeys.Enter):
			item, ok := m.list.SelectedItem().(instanceItem)
			if !ok {
				return m, nil
			}
			inst := item.inst
			m.selected = &inst
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, instancePickerKeys.Quit):
			// Esc with an applied filter clears it instead of cancelling.
			if m.list.FilterState() == list.FilterApplied && msg.String() == "esc" {
				break
			}
			m.cancelled = true
			m.quitting = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width, msg.Height-2)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m InstancePickerModel) View() string {
	if m.quitting {
		return ""
	}
	return m.list.View()
}

// Selected returns the chosen instance, or nil when nothing was chosen.
func (m InstancePickerModel) Selected() *instance.Instance {
	return m.selected
}

// Cancelled reports whether the operator backed out of the picker.
func (m InstancePickerModel) Cancelled() bool {
	return m.cancelled
}

// PickInstance shows the picker on the terminal. The picker is shown even
// for a single instance so nothing is deployed without a confirmation.
func PickInstance(ctx context.Context, instances []instance.Instance) (*instance.Instance, error) {
	return PickInstanceWithIO(ctx, instances, os.Stdout, os.Stdin)
}

// PickInstanceWithIO shows the picker using custom I/O.
func PickInstanceWithIO(ctx context.Context, instances []instance.Instance, output io.Writer, input io.Reader) (*instance.Instance, error) {
	if len(instances) == 0 {
		return nil, errors.New(errors.ErrNotFound,
			"No instances to pick from",
			"Check the region, or launch an instance first.")
	}

	p := tea.NewProgram(
		NewInstancePickerModel(instances),
		tea.WithContext(ctx),
		tea.WithOutput(output),
		tea.WithInput(input),
	)

	finalModel, err := p.Run()
	if err != nil {
		if ctx.Err() != nil || stderrors.Is(err, tea.ErrProgramKilled) {
			return nil, errors.NewCancelled("Instance selection")
		}
		return nil, errors.WrapWithCode(err, errors.ErrProvider,
			"Instance picker failed",
			"Use --instance to pass the instance id directly.")
	}

	m, ok := finalModel.(InstancePickerModel)
	if !ok || m.Cancelled() || m.Selected() == nil {
		return nil, errors.NewCancelled("Instance selection")
	}
	return m.Selected(), nil
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
