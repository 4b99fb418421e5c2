package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/labastilla/wedx/internal/models"
	"github.com/labastilla/wedx/internal/shared"
	"github.com/labastilla/wedx/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	FormView ViewState = iota
	UploadView
	GenerateView
	AssembleView
	ResultView
)

// Form field indices, in navigation order.
const (
	fieldNameA = iota
	fieldPhoneA
	fieldEmailA
	fieldNameB
	fieldPhoneB
	fieldEmailB
	fieldDate
	fieldImage
	fieldCount
)

var fieldLabels = [fieldCount]string{
	"Name (person 1)",
	"Phone (person 1)",
	"Email (person 1)",
	"Name (person 2)",
	"Phone (person 2)",
	"Email (person 2)",
	"Wedding date (DD-MM-YYYY)",
	"Photo path",
}

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	view         ViewState
	engine       *tasks.Engine
	mail         *tasks.MailFlow
	width        int
	height       int
	inputs       []textinput.Model
	focused      int
	form         models.FormState
	formErr      string
	progressChan chan tasks.ProgressUpdate
	progress     tasks.ProgressUpdate
	videoURL     string
	status       string
	err          error
	help         help.Model
	keys         keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, engine *tasks.Engine, mail *tasks.MailFlow) *Model {
	inputs := make([]textinput.Model, fieldCount)
	for i := range inputs {
		ti := textinput.New()
		ti.Prompt = ""
		ti.CharLimit = 120
		inputs[i] = ti
	}
	inputs[fieldNameA].Focus()

	m := &Model{
		ctx:    ctx,
		view:   FormView,
		engine: engine,
		mail:   mail,
		inputs: inputs,
		help:   help.New(),
		keys:   newKeyMap(),
	}

	// Resume an interrupted run where it left off.
	if form, err := engine.FormState(); err == nil {
		m.prefill(form)
	}

	return m
}

func (m *Model) prefill(form models.FormState) {
	m.form = form
	m.inputs[fieldNameA].SetValue(form.PersonA.Name)
	m.inputs[fieldPhoneA].SetValue(form.PersonA.Phone)
	m.inputs[fieldEmailA].SetValue(form.PersonA.Email)
	m.inputs[fieldNameB].SetValue(form.PersonB.Name)
	m.inputs[fieldPhoneB].SetValue(form.PersonB.Phone)
	m.inputs[fieldEmailB].SetValue(form.PersonB.Email)
	m.inputs[fieldDate].SetValue(form.EventDate)
	m.inputs[fieldImage].SetValue(form.ImagePath)
}

// collect builds the next form record from the input fields.
func (m *Model) collect() models.FormState {
	next := m.form
	next.PersonA = models.Person{
		Name:  strings.TrimSpace(m.inputs[fieldNameA].Value()),
		Phone: strings.TrimSpace(m.inputs[fieldPhoneA].Value()),
		Email: strings.TrimSpace(m.inputs[fieldEmailA].Value()),
	}
	next.PersonB = models.Person{
		Name:  strings.TrimSpace(m.inputs[fieldNameB].Value()),
		Phone: strings.TrimSpace(m.inputs[fieldPhoneB].Value()),
		Email: strings.TrimSpace(m.inputs[fieldEmailB].Value()),
	}
	next.EventDate = models.NormalizeDate(strings.TrimSpace(m.inputs[fieldDate].Value()))
	next.ImagePath = strings.TrimSpace(m.inputs[fieldImage].Value())
	return next
}

// Init does nothing; the model starts on the form view.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case FormView:
			return m.handleFormKeys(msg)
		case GenerateView:
			return m.handleGenerateKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		default:
			if key.Matches(msg, m.keys.quit) {
				return m, tea.Quit
			}
		}
		return m, nil

	case uploadDoneMsg:
		if msg.err != nil {
			m.view = FormView
			m.formErr = msg.err.Error()
			return m, nil
		}
		m.form = msg.form
		m.view = GenerateView
		return m, m.startGeneration()

	case progressUpdateMsg:
		m.progress = tasks.ProgressUpdate(msg)
		return m, m.waitForProgress()

	case generateDoneMsg:
		// The generating goroutine owns the channel close; just detach.
		m.progressChan = nil
		m.err = msg.err
		return m, nil

	case assembleDoneMsg:
		if msg.err != nil {
			m.view = GenerateView
			m.status = styles.err.Render(msg.err.Error())
			return m, nil
		}
		m.videoURL = msg.videoURL
		m.view = ResultView
		m.status = ""
		return m, nil

	case mailDoneMsg:
		if msg.err != nil {
			m.status = styles.err.Render(fmt.Sprintf("Email failed: %v", msg.err))
		} else {
			m.status = styles.ok.Render("Email sent")
		}
		return m, nil

	case whatsappDoneMsg:
		if msg.err != nil {
			m.status = styles.err.Render(fmt.Sprintf("WhatsApp failed: %v", msg.err))
		} else {
			m.status = styles.ok.Render("WhatsApp sent")
		}
		return m, nil
	}

	return m.updateInputs(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case FormView:
		return m.renderForm()
	case UploadView:
		return m.renderUpload()
	case GenerateView:
		return m.renderGenerate()
	case AssembleView:
		return m.renderAssemble()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handleFormKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	// Only ctrl+c quits here; "q" is a letter people type into the form.
	case msg.String() == "ctrl+c":
		return m, tea.Quit
	case key.Matches(msg, m.keys.next):
		m.focusField((m.focused + 1) % fieldCount)
		return m, nil
	case key.Matches(msg, m.keys.prev):
		m.focusField((m.focused + fieldCount - 1) % fieldCount)
		return m, nil
	case key.Matches(msg, m.keys.enter):
		if m.focused < fieldCount-1 {
			m.focusField(m.focused + 1)
			return m, nil
		}
		return m.submitForm()
	}

	var cmd tea.Cmd
	m.inputs[m.focused], cmd = m.inputs[m.focused].Update(msg)
	return m, cmd
}

func (m *Model) focusField(i int) {
	m.inputs[m.focused].Blur()
	m.focused = i
	m.inputs[m.focused].Focus()
}

func (m *Model) submitForm() (tea.Model, tea.Cmd) {
	form := m.collect()
	if !form.DemoMode {
		if err := form.Validate(); err != nil {
			m.formErr = err.Error()
			return m, nil
		}
	}
	if err := m.engine.ReplaceForm(form); err != nil {
		m.formErr = err.Error()
		return m, nil
	}
	m.form = form
	m.formErr = ""
	m.view = UploadView
	return m, m.startUpload()
}

func (m *Model) handleGenerateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.enter):
		if !m.allResolved() {
			m.status = styles.warn.Render("Still generating, wait for every video to finish")
			return m, nil
		}
		m.view = AssembleView
		m.status = ""
		return m, m.startAssembly()
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.open):
		shared.OpenBrowser(m.videoURL)
		return m, nil
	case key.Matches(msg, m.keys.mail):
		m.status = styles.warn.Render("Sending email... a browser window may open for login")
		return m, m.startMail()
	case key.Matches(msg, m.keys.wsp):
		return m, m.startWhatsApp()
	case key.Matches(msg, m.keys.restart):
		if err := m.engine.ResetRun(); err != nil {
			m.status = styles.err.Render(err.Error())
			return m, nil
		}
		m.prefill(models.DefaultFormState())
		m.videoURL = ""
		m.status = ""
		m.err = nil
		m.view = FormView
		m.focusField(fieldNameA)
		return m, textinput.Blink
	}
	return m, nil
}

func (m *Model) updateInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.view != FormView {
		return m, nil
	}
	var cmd tea.Cmd
	m.inputs[m.focused], cmd = m.inputs[m.focused].Update(msg)
	return m, cmd
}

func (m *Model) allResolved() bool {
	for _, kind := range []models.ArtifactKind{models.PosterVideo, models.Polaroid, models.CoupleVideo} {
		if !m.engine.Artifact(kind).Resolved() {
			return false
		}
	}
	return true
}

func (m *Model) startUpload() tea.Cmd {
	return func() tea.Msg {
		form, err := m.engine.Upload(m.ctx, nil)
		return uploadDoneMsg{form: form, err: err}
	}
}

func (m *Model) startGeneration() tea.Cmd {
	m.progressChan = make(chan tasks.ProgressUpdate, 50)

	ch := m.progressChan
	go func() {
		err := m.engine.GenerateAll(m.ctx, ch)
		m.err = err
		close(ch)
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	return func() tea.Msg {
		if m.progressChan == nil {
			return generateDoneMsg{err: m.err}
		}

		update, ok := <-m.progressChan
		if !ok {
			return generateDoneMsg{err: m.err}
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) startAssembly() tea.Cmd {
	return func() tea.Msg {
		url, err := m.engine.AssembleFinal(m.ctx, nil)
		return assembleDoneMsg{videoURL: url, err: err}
	}
}

func (m *Model) startMail() tea.Cmd {
	return func() tea.Msg {
		recipients := []string{}
		if m.form.PersonA.Email != "" {
			recipients = append(recipients, m.form.PersonA.Email)
		}
		if m.form.PersonB.Email != "" {
			recipients = append(recipients, m.form.PersonB.Email)
		}
		err := m.mail.SendVideo(m.ctx, recipients, "Tu boda con La Bastilla", "Aqui tienes el video de tu boda", m.videoURL)
		return mailDoneMsg{err: err}
	}
}

func (m *Model) startWhatsApp() tea.Cmd {
	return func() tea.Msg {
		return whatsappDoneMsg{err: m.engine.NotifyWhatsApp(m.ctx)}
	}
}

func (m *Model) renderForm() string {
	var b strings.Builder
	b.WriteString(styles.title.Render("Your wedding video"))
	b.WriteString("\n\n")

	for i, input := range m.inputs {
		label := fieldLabels[i]
		if i == m.focused {
			label = styles.ok.Render("> " + label)
		} else {
			label = "  " + label
		}
		b.WriteString(fmt.Sprintf("%s\n  %s\n", label, input.View()))
	}

	if m.formErr != "" {
		b.WriteString("\n" + styles.err.Render(m.formErr) + "\n")
	}

	helpKeys := []key.Binding{m.keys.next, m.keys.enter, m.keys.quit}
	b.WriteString("\n" + m.help.ShortHelpView(helpKeys))
	return b.String()
}

func (m *Model) renderUpload() string {
	return fmt.Sprintf("%s\n\nUploading your photo...", styles.title.Render("Your wedding video"))
}

func (m *Model) renderGenerate() string {
	var b strings.Builder
	b.WriteString(styles.title.Render("Generating your videos"))
	b.WriteString("\n\n")

	for _, entry := range []struct {
		label string
		kind  models.ArtifactKind
	}{
		{"Save-the-date poster", models.PosterVideo},
		{"Polaroid", models.Polaroid},
		{"Couple video", models.CoupleVideo},
	} {
		a := m.engine.Artifact(entry.kind)
		var state string
		switch {
		case a.Loading:
			state = styles.warn.Render("generating...")
		case a.Error != "":
			state = styles.err.Render(a.Error)
		case a.IsPlaceholder:
			state = styles.warn.Render("ready (placeholder)")
		case a.URL != "":
			state = styles.ok.Render("ready")
		default:
			state = styles.help.Render("pending")
		}
		b.WriteString(fmt.Sprintf("  %-22s %s\n", entry.label, state))
	}

	if m.progress.Message != "" {
		b.WriteString("\n" + styles.help.Render(m.progress.Message) + "\n")
	}
	if m.status != "" {
		b.WriteString("\n" + m.status + "\n")
	}

	helpKeys := []key.Binding{m.keys.enter, m.keys.quit}
	b.WriteString("\n" + m.help.ShortHelpView(helpKeys))
	return b.String()
}

func (m *Model) renderAssemble() string {
	return fmt.Sprintf("%s\n\nComposing the final video...", styles.title.Render("Almost there"))
}

func (m *Model) renderResult() string {
	title := styles.ok.Render("✓ Your video is ready!")
	info := fmt.Sprintf("\n%s\n", m.videoURL)

	var status string
	if m.status != "" {
		status = "\n" + m.status + "\n"
	}

	helpKeys := []key.Binding{m.keys.open, m.keys.mail, m.keys.wsp, m.keys.restart, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s%s\n%s", title, info, status, helpView)
}
