package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/Aman-CERP/vecdb/internal/vecdb/collection"
)

// queryCacheSize bounds how many distinct query strings a single browse
// session remembers results for. Re-submitting the same query string hits
// the cache instead of re-walking the graph; re-rendering the view never runs
// a search at all.
const queryCacheSize = 64

// searcher is the subset of *collection.Collection the browse model needs,
// so tests can drive it against a fake.
type searcher interface {
	Name() string
	Dimension() int
	Metric() string
	Stats() collection.Stats
	Search(query []float32, k int) ([]collection.Hit, error)
	Get(id uint64) ([]float32, error)
}

type mode int

const (
	modeBrowse mode = iota
	modeQuery
)

type browseModel struct {
	coll   searcher
	styles Styles
	cache  *lru.Cache[string, []collection.Hit]

	table     table.Model
	input     textinput.Model
	mode      mode
	err       error
	statusMsg string
}

// Run starts the interactive browser for coll in the alternate screen
// buffer, blocking until the user quits.
func Run(coll searcher) error {
	m := newBrowseModel(coll)
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func newBrowseModel(coll searcher) *browseModel {
	columns := []table.Column{
		{Title: "User ID", Width: 12},
		{Title: "Distance", Width: 12},
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	ti := textinput.New()
	ti.Placeholder = "comma-separated query vector, e.g. 0.1,0.2,0.3"
	ti.CharLimit = 4096

	cache, _ := lru.New[string, []collection.Hit](queryCacheSize)

	return &browseModel{
		coll:   coll,
		styles: DefaultStyles(),
		cache:  cache,
		table:  t,
		input:  ti,
		mode:   modeBrowse,
	}
}

func (m *browseModel) Init() tea.Cmd {
	return nil
}

func (m *browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch m.mode {
		case modeQuery:
			switch msg.String() {
			case "esc":
				m.mode = modeBrowse
				return m, nil
			case "enter":
				m.runQuery()
				m.mode = modeBrowse
				return m, nil
			}
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			return m, cmd
		default:
			switch msg.String() {
			case "q", "ctrl+c":
				return m, tea.Quit
			case "/":
				m.mode = modeQuery
				m.input.Focus()
				m.input.SetValue("")
				return m, nil
			}
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *browseModel) runQuery() {
	fields := strings.Split(m.input.Value(), ",")
	query := make([]float32, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		v, err := strconv.ParseFloat(f, 32)
		if err != nil {
			m.err = fmt.Errorf("invalid vector component %q: %w", f, err)
			return
		}
		query = append(query, float32(v))
	}
	if len(query) != m.coll.Dimension() {
		m.err = fmt.Errorf("query has %d components, collection dimension is %d", len(query), m.coll.Dimension())
		return
	}

	cacheKey := m.input.Value()
	hits, ok := m.cache.Get(cacheKey)
	if !ok {
		var err error
		hits, err = m.coll.Search(query, 10)
		if err != nil {
			m.err = err
			return
		}
		m.cache.Add(cacheKey, hits)
	}
	m.err = nil

	rows := make([]table.Row, 0, len(hits))
	for _, h := range hits {
		rows = append(rows, table.Row{strconv.FormatUint(h.ID, 10), fmt.Sprintf("%.6f", h.Distance)})
	}
	m.table.SetRows(rows)
	m.statusMsg = fmt.Sprintf("%d results", len(hits))
}

func (m *browseModel) View() string {
	var b strings.Builder

	stats := m.coll.Stats()
	header := fmt.Sprintf("%s  dim=%d metric=%s  live=%d tombstoned=%d",
		m.coll.Name(), m.coll.Dimension(), m.coll.Metric(), stats.Count, stats.DeletedCount)
	b.WriteString(m.styles.Header.Render(header))
	b.WriteString("\n\n")

	if m.mode == modeQuery {
		b.WriteString(m.styles.Label.Render("query: "))
		b.WriteString(m.input.View())
		b.WriteString("\n\n")
	}

	b.WriteString(m.styles.Border.Render(m.table.View()))
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString(m.styles.Error.Render("error: " + m.err.Error()))
	} else if m.statusMsg != "" {
		b.WriteString(m.styles.Dim.Render(m.statusMsg))
	} else {
		b.WriteString(m.styles.Dim.Render("press / to search, q to quit"))
	}
	b.WriteString("\n")

	return b.String()
}
