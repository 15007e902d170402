package catalogtui

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/k8s-schemas/crdcat/pkg/catalogcmd"
)

// SourcesModel displays the progress of processing multiple sources, including
// per-source spinners, a progress bar, and a final summary. Completed sources
// are printed above the view as they finish.
// Create instances with [NewSourcesModel].
type SourcesModel struct {
	verb             string
	startedSources   []string
	completedSources []string
	progress         progress.Model
	baseModel
	totalSources int
}

// NewSourcesModel creates a new [SourcesModel] that displays the progress of
// processing sources.
// `verb`: the ongoing action using present participle tense (e.g., "extracting").
func NewSourcesModel(verb string) *SourcesModel {
	caser := cases.Title(language.English)

	p := progress.New(
		progress.WithDefaultGradient(),
		progress.WithWidth(40),
		progress.WithoutPercentage(),
	)

	return &SourcesModel{
		baseModel:        newBaseModel(),
		verb:             caser.String(verb),
		startedSources:   []string{},
		completedSources: []string{},
		progress:         p,
	}
}

func (m *SourcesModel) Init() tea.Cmd {
	return m.spinner.Tick
}

//nolint:ireturn // Third-party.
func (m *SourcesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case catalogcmd.EventSetTotal:
		m.totalSources = int(msg)

	case catalogcmd.EventStarted:
		m.state = stateWorking
		m.startedSources = append(m.startedSources, string(msg))

	case catalogcmd.EventCompleted:
		m.completedSources = append(m.completedSources, msg.Name)

		icon := defaultStyles.check
		if msg.Err != nil {
			icon = defaultStyles.cross
		}

		completedCount := len(m.completedSources)
		progressCmd := m.progress.SetPercent(float64(completedCount) / float64(m.totalSources))

		return m, tea.Batch(
			progressCmd,
			tea.Printf("%s %s", icon, msg.Name),
		)

	case progress.FrameMsg:
		if m.state == stateWorking {
			newModel, cmd := m.progress.Update(msg)
			if newModel, ok := newModel.(progress.Model); ok {
				m.progress = newModel
			}

			return m, cmd
		}

	default:
		if cmd, handled := m.handleCommon(msg); handled {
			return m, cmd
		}
	}

	return m, nil
}

func (m *SourcesModel) View() string {
	switch m.state {
	case stateError:
		return getErrorMessage(m.err, m.width, m.totalSources)

	case stateDone:
		completedCount := len(m.completedSources)

		return defaultStyles.done.Render(fmt.Sprintf("Done! Processed %d sources.\n", completedCount))

	case stateWorking:
		var out strings.Builder

		inProgressSources := differenceStringSlices(m.startedSources, m.completedSources)

		for _, src := range inProgressSources {
			spin := m.spinner.View() + " "
			cellsAvail := max(0, m.width-lipgloss.Width(spin))

			srcName := defaultStyles.itemName.Render(src)
			info := lipgloss.NewStyle().MaxWidth(cellsAvail).Render(m.verb + " " + srcName)

			cellsRemaining := max(0, m.width-lipgloss.Width(spin+info))
			gap := strings.Repeat(" ", cellsRemaining) + "\n"

			out.WriteString(spin + info + gap)
		}

		completedCount := len(m.completedSources)
		w := lipgloss.Width(strconv.Itoa(m.totalSources))
		sourceCount := fmt.Sprintf(" %*d/%*d", w, completedCount, w, m.totalSources)

		prog := m.progress.View()
		progRendered := defaultStyles.progress.Render(prog + sourceCount)
		progCellsRemaining := max(0, m.width-lipgloss.Width(progRendered))
		gap := strings.Repeat(" ", progCellsRemaining)

		out.WriteString(progRendered + gap + "\n")

		return out.String()

	case stateIdle:
		return ""
	}

	return ""
}

func differenceStringSlices(a, b []string) []string {
	difference := []string{}

	for _, x := range a {
		if !slices.Contains(b, x) {
			difference = append(difference, x)
		}
	}

	return difference
}
