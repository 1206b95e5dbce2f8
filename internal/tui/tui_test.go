package tui

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bopkit/bopprep/internal/command"
	"github.com/bopkit/bopprep/internal/config"
	"github.com/bopkit/bopprep/internal/model"
)

func newTestModel(rec *command.Recorder) Model {
	m := NewModel(config.DefaultSettings())
	m.newRunner = func(*eventSink) command.Runner { return rec }
	return m
}

func TestModel_ToggleMode(t *testing.T) {
	m := newTestModel(command.NewRecorder())

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlT})
	m = updated.(Model)
	assert.Equal(t, ModeTemplates, m.mode)
	assert.Equal(t, fieldRoot, m.focus)

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlT})
	m = updated.(Model)
	assert.Equal(t, ModeProcess, m.mode)
	assert.Equal(t, fieldDir, m.focus)
}

func TestModel_TabCyclesFields(t *testing.T) {
	m := newTestModel(command.NewRecorder())

	var seen []int
	for i := 0; i < 3; i++ {
		updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
		m = updated.(Model)
		seen = append(seen, m.focus)
	}
	assert.Equal(t, []int{fieldDataset, fieldNprocs, fieldDir}, seen)
}

func TestModel_StartRejectsMissingInput(t *testing.T) {
	m := newTestModel(command.NewRecorder())

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)
	assert.Equal(t, StateInput, m.state)
	require.Error(t, m.err)

	m.inputs[fieldDir].SetValue(t.TempDir())
	m.inputs[fieldDataset].SetValue("ycbv")
	m.inputs[fieldNprocs].SetValue("four")
	_, err := m.start()
	assert.ErrorContains(t, err, "not a number")
}

func TestModel_ProcessRun(t *testing.T) {
	rec := command.NewRecorder()
	m := newTestModel(rec)
	root := t.TempDir()
	m.inputs[fieldDir].SetValue(root)
	m.inputs[fieldDataset].SetValue("ycbv")
	m.inputs[fieldNprocs].SetValue("4")

	cmd, err := m.start()
	require.NoError(t, err)
	done, ok := cmd().(DoneMsg)
	require.True(t, ok)
	require.NoError(t, done.Err)

	cmds := rec.Strings()
	require.Len(t, cmds, 2)
	assert.True(t, strings.HasSuffix(cmds[1], "--nprocs 4"), cmds[1])
	assert.DirExists(t, filepath.Join(root, "tmp", "ycbv_image_wise", "test"))

	updated, _ := m.Update(done)
	m = updated.(Model)
	assert.Equal(t, StateComplete, m.state)
	require.NotEmpty(t, m.logs)
	assert.Equal(t, model.LevelSuccess, m.logs[len(m.logs)-1].Level)
	assert.Equal(t, filepath.Join(root, "test"), m.target)
}

func TestModel_ProcessFailure(t *testing.T) {
	rec := command.NewRecorder()
	m := newTestModel(rec)
	root := t.TempDir()
	m.inputs[fieldDir].SetValue(root)
	m.inputs[fieldDataset].SetValue("lm")

	first := command.Command{
		Name: "python",
		Args: []string{
			"-m", "src.scripts.convert_scenewise_to_imagewise",
			"--input", filepath.Join(root, "test"),
			"--output", filepath.Join(root, "tmp", "lm_image_wise", "test"),
			"--nprocs", "10",
		},
	}
	rec.FailWith(first.String(), 3)

	cmd, err := m.start()
	require.NoError(t, err)
	done := cmd().(DoneMsg)

	updated, _ := m.Update(done)
	m = updated.(Model)
	assert.Equal(t, StateError, m.state)
	assert.ErrorContains(t, m.err, "return code 3")
	assert.Len(t, rec.Commands(), 1)
}

func TestModel_TemplatesRun(t *testing.T) {
	rec := command.NewRecorder()
	rec.Hook = func(cmd command.Command) error {
		switch cmd.Name {
		case "wget":
			return os.WriteFile(cmd.Args[1], []byte("PK"), 0644)
		case "unzip":
			return os.MkdirAll(filepath.Join(cmd.Args[2], "templates"), 0755)
		}
		return nil
	}
	m := newTestModel(rec)
	m.mode = ModeTemplates

	m.inputs[fieldRoot].SetValue("")
	_, err := m.start()
	require.Error(t, err)

	root := t.TempDir()
	m.inputs[fieldRoot].SetValue(root)
	cmd, err := m.start()
	require.NoError(t, err)
	done := cmd().(DoneMsg)
	require.NoError(t, done.Err)

	assert.DirExists(t, filepath.Join(root, "datasets", "templates"))
	assert.Equal(t, []string{"wget", "unzip"}, []string{rec.Commands()[0].Name, rec.Commands()[1].Name})
}

func TestModel_TemplatesMissingArchive(t *testing.T) {
	m := newTestModel(command.NewRecorder())
	m.mode = ModeTemplates
	m.inputs[fieldRoot].SetValue(t.TempDir())

	cmd, err := m.start()
	require.NoError(t, err)
	done := cmd().(DoneMsg)
	assert.ErrorContains(t, done.Err, "missing archive")
}

func press(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	updated, _ := m.Update(msg)
	return updated.(Model)
}

func TestModel_IgnoresAbandonedRun(t *testing.T) {
	m := newTestModel(command.NewRecorder())
	m.inputs[fieldDir].SetValue(t.TempDir())
	m.inputs[fieldDataset].SetValue("lm")

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, StateRunning, m.state)
	first := m.run

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	require.Equal(t, StateError, m.state)
	m = press(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	require.Equal(t, StateInput, m.state)

	// the cancelled run reports back after the reset
	m = press(t, m, DoneMsg{Run: first})
	assert.Equal(t, StateInput, m.state)
	assert.NoError(t, m.err)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, StateRunning, m.state)
	assert.NotEqual(t, first, m.run)

	m = press(t, m, DoneMsg{Run: first, Err: errors.New("stale failure")})
	assert.Equal(t, StateRunning, m.state)

	m = press(t, m, DoneMsg{Run: m.run})
	assert.Equal(t, StateComplete, m.state)
}

func TestModel_ValidatesOnlyTheSelectedOperation(t *testing.T) {
	settings := config.DefaultSettings()
	settings.Templates.Extractor = "7z"
	m := NewModel(settings)
	m.newRunner = func(*eventSink) command.Runner { return command.NewRecorder() }
	m.inputs[fieldDir].SetValue(t.TempDir())
	m.inputs[fieldDataset].SetValue("lm")

	_, err := m.start()
	require.NoError(t, err)

	m.mode = ModeTemplates
	m.inputs[fieldRoot].SetValue(t.TempDir())
	_, err = m.start()
	assert.ErrorContains(t, err, "templates.extractor")
}
