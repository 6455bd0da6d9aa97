package tui

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/user/linkfind/internal/db"
	"github.com/user/linkfind/internal/extract"
)

const listLimit = 200

type model struct {
	store       *db.Store
	user        string
	searchInput textinput.Model
	list        list.Model
	links       []db.Link
	mainFolders []db.Folder
	filter      int // index into mainFolders, -1 for all
	width       int
	height      int
	searching   bool
	status      string
	err         error
}

type linkItem struct {
	link db.Link
}

func (l linkItem) Title() string {
	return fmt.Sprintf("%s %s", sourceIcon(l.link.Source), l.link.Title)
}

func (l linkItem) Description() string {
	desc := l.link.URL
	if l.link.Description != "" {
		desc = l.link.Description
		if len(desc) > 80 {
			desc = extract.Truncate(desc, 80) + "..."
		}
	}
	return fmt.Sprintf("%s  %s", l.link.FolderPath, desc)
}

func (l linkItem) FilterValue() string {
	return l.link.Title + " " + l.link.Description + " " + strings.Join(l.link.Tags, " ")
}

func sourceIcon(source string) string {
	switch source {
	case "youtube":
		return "[Y]"
	case "github":
		return "[G]"
	case "medium":
		return "[M]"
	case "twitter":
		return "[X]"
	case "stackoverflow":
		return "[S]"
	case "reddit":
		return "[R]"
	default:
		return "[·]"
	}
}

func initialModel(store *db.Store, user string) model {
	ti := textinput.New()
	ti.Placeholder = "Search links..."
	ti.CharLimit = 256
	ti.Width = 50

	delegate := list.NewDefaultDelegate()
	l := list.New([]list.Item{}, delegate, 0, 0)
	l.Title = "linkfind"
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(true)

	return model{
		store:       store,
		user:        user,
		searchInput: ti,
		list:        l,
		filter:      -1,
	}
}

type loadedMsg struct {
	mainFolders []db.Folder
	links       []db.Link
	err         error
}

type searchMsg struct {
	links []db.Link
	err   error
}

type deletedMsg struct {
	title string
	err   error
}

func (m model) Init() tea.Cmd {
	return m.load
}

func (m model) load() tea.Msg {
	if m.store == nil {
		return loadedMsg{err: fmt.Errorf("store not initialized")}
	}

	folders, err := m.store.ListFolders(m.user)
	if err != nil {
		return loadedMsg{err: err}
	}
	var mains []db.Folder
	for _, f := range folders {
		if f.ParentID == "" {
			mains = append(mains, f)
		}
	}

	links, err := m.store.ListLinks(m.user, db.LinkFilter{Limit: listLimit})
	return loadedMsg{mainFolders: mains, links: links, err: err}
}

func (m model) currentFolder() *db.Folder {
	if m.filter < 0 || m.filter >= len(m.mainFolders) {
		return nil
	}
	return &m.mainFolders[m.filter]
}

func (m model) doSearch(query string) tea.Cmd {
	filter := db.LinkFilter{Search: query, Limit: listLimit}
	if f := m.currentFolder(); f != nil {
		filter.FolderID = f.ID
	}
	return func() tea.Msg {
		if m.store == nil {
			return searchMsg{err: fmt.Errorf("store not initialized")}
		}
		links, err := m.store.ListLinks(m.user, filter)
		return searchMsg{links: links, err: err}
	}
}

func (m model) deleteLink(link db.Link) tea.Cmd {
	return func() tea.Msg {
		if m.store == nil {
			return deletedMsg{err: fmt.Errorf("store not initialized")}
		}
		return deletedMsg{title: link.Title, err: m.store.DeleteLink(m.user, link.ID)}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "q":
			if !m.searching {
				return m, tea.Quit
			}
		case "esc":
			if m.searching {
				m.searching = false
				m.searchInput.Blur()
				return m, nil
			}
		case "/":
			if !m.searching {
				m.searching = true
				m.searchInput.Focus()
				return m, textinput.Blink
			}
		case "enter":
			if m.searching {
				m.searching = false
				m.searchInput.Blur()
				return m, m.doSearch(m.searchInput.Value())
			}
		case "j", "down":
			if !m.searching {
				m.list.CursorDown()
				return m, nil
			}
		case "k", "up":
			if !m.searching {
				m.list.CursorUp()
				return m, nil
			}
		case "g":
			if !m.searching {
				m.list.Select(0)
				return m, nil
			}
		case "G":
			if !m.searching {
				items := m.list.Items()
				if len(items) > 0 {
					m.list.Select(len(items) - 1)
				}
				return m, nil
			}
		case "f":
			if !m.searching {
				m.filter++
				if m.filter >= len(m.mainFolders) {
					m.filter = -1
				}
				return m, m.doSearch(m.searchInput.Value())
			}
		case "o":
			if !m.searching {
				if item, ok := m.list.SelectedItem().(linkItem); ok {
					openBrowser(item.link.URL)
				}
				return m, nil
			}
		case "d":
			if !m.searching {
				if item, ok := m.list.SelectedItem().(linkItem); ok {
					return m, m.deleteLink(item.link)
				}
				return m, nil
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width, msg.Height-6)
		m.searchInput.Width = msg.Width - 20

	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.mainFolders = msg.mainFolders
		m.setLinks(msg.links)
		return m, nil

	case searchMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.setLinks(msg.links)
		return m, nil

	case deletedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Delete failed: %v", msg.err)
			return m, nil
		}
		m.status = fmt.Sprintf("Deleted: %s", msg.title)
		return m, m.doSearch(m.searchInput.Value())
	}

	if m.searching {
		var cmd tea.Cmd
		m.searchInput, cmd = m.searchInput.Update(msg)
		cmds = append(cmds, cmd)

		// Live search on input change
		if _, ok := msg.(tea.KeyMsg); ok {
			cmds = append(cmds, m.doSearch(m.searchInput.Value()))
		}
	} else {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *model) setLinks(links []db.Link) {
	m.links = links
	items := make([]list.Item, 0, len(links))
	for _, l := range links {
		items = append(items, linkItem{link: l})
	}
	m.list.SetItems(items)
}

func (m model) View() string {
	if m.err != nil {
		return fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err)
	}

	var b strings.Builder

	searchStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("62")).
		Padding(0, 1)

	activeFilter := lipgloss.NewStyle().
		Foreground(lipgloss.Color("86")).
		Bold(true)

	mutedStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("240"))

	folder := "All folders"
	if f := m.currentFolder(); f != nil {
		folder = f.Icon + " " + f.Name
	}

	searchBox := searchStyle.Render(m.searchInput.View())
	filterBar := mutedStyle.Render("[f] ") + activeFilter.Render(folder)

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, searchBox, "  ", filterBar))
	b.WriteString("\n\n")

	b.WriteString(m.list.View())

	helpStyle := mutedStyle.MarginTop(1)
	help := "[j/k]nav [g/G]top/end [/]search [f]older [o]pen [d]elete [q]uit"
	if m.status != "" {
		help = m.status + "  " + help
	}
	b.WriteString(helpStyle.Render(help))

	return b.String()
}

func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	}
	if cmd != nil {
		cmd.Start()
	}
}

// Run starts the link browser for user.
func Run(store *db.Store, user string) error {
	p := tea.NewProgram(initialModel(store, user), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
