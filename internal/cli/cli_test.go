package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bopkit/bopprep/internal/command"
	"github.com/bopkit/bopprep/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	Env
	stdout *bytes.Buffer
	stderr *bytes.Buffer
	rec    *command.Recorder
}

func newTestEnv() *testEnv {
	te := &testEnv{
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
		rec:    command.NewRecorder(),
	}
	te.Env = Env{Stdout: te.stdout, Stderr: te.stderr, Runner: te.rec}
	return te
}

func exitCode(t *testing.T, err error) int {
	t.Helper()
	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr), "expected *ExitError, got %v", err)
	return exitErr.Code
}

func missingConfig(t *testing.T) string {
	return filepath.Join(t.TempDir(), "machine.hcl")
}

func TestProcess_RequiredFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"none", nil},
		{"no dataset", []string{"--local_dir", "/data"}},
		{"no dir", []string{"--dataset_name", "lm"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			te := newTestEnv()
			err := Process(context.Background(), tt.args, te.Env)
			assert.Equal(t, ExitUsage, exitCode(t, err))
			assert.Empty(t, te.rec.Commands())
		})
	}
}

func TestProcess_BadFlag(t *testing.T) {
	te := newTestEnv()
	err := Process(context.Background(), []string{"--nprocs", "many"}, te.Env)
	assert.Equal(t, ExitUsage, exitCode(t, err))
}

func TestProcess_Help(t *testing.T) {
	te := newTestEnv()
	require.NoError(t, Process(context.Background(), []string{"-h"}, te.Env))
	assert.Contains(t, te.stderr.String(), "--local_dir")
}

func TestProcess_DryRun(t *testing.T) {
	te := newTestEnv()
	args := []string{"--config", missingConfig(t), "--local_dir", "/data/ycbv", "--dataset_name", "ycbv", "--nprocs", "4", "--dry-run"}

	require.NoError(t, Process(context.Background(), args, te.Env))
	assert.Empty(t, te.rec.Commands())

	lines := strings.Split(strings.TrimSpace(te.stdout.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "convert_scenewise_to_imagewise")
	assert.True(t, strings.HasSuffix(lines[1], "--nprocs 4"), lines[1])
}

func TestProcess_DryRunWithoutNprocs(t *testing.T) {
	te := newTestEnv()
	args := []string{"--config", missingConfig(t), "--local_dir", "/data/lm", "--dataset_name", "lm", "--nprocs", "4", "--dry-run"}

	require.NoError(t, Process(context.Background(), args, te.Env))
	lines := strings.Split(strings.TrimSpace(te.stdout.String()), "\n")
	require.Len(t, lines, 2)
	assert.NotContains(t, lines[1], "--nprocs")
}

func TestProcess_Runs(t *testing.T) {
	te := newTestEnv()
	root := filepath.Join(t.TempDir(), "tless")
	args := []string{"--config", missingConfig(t), "--local_dir", root, "--dataset_name", "tless", "--python", "python3"}

	require.NoError(t, Process(context.Background(), args, te.Env))

	cmds := te.rec.Commands()
	require.Len(t, cmds, 2)
	assert.Equal(t, "python3", cmds[0].Name)
	assert.Contains(t, cmds[0].Args, filepath.Join(root, "test_primesense"))
	assert.True(t, strings.HasSuffix(cmds[1].String(), "--nprocs 10"))
	assert.DirExists(t, filepath.Join(root, "tmp", "tless_image_wise", "test_primesense"))
	assert.Contains(t, te.stderr.String(), "Processing complete")
	assert.Contains(t, te.stderr.String(), "run_id=")
}

func TestProcess_NprocsFromConfig(t *testing.T) {
	te := newTestEnv()
	cfgPath := filepath.Join(t.TempDir(), "machine.hcl")
	require.NoError(t, os.WriteFile(cfgPath, []byte("nprocs = 6\n"), 0644))

	args := []string{"--config", cfgPath, "--local_dir", "/data/ycbv", "--dataset_name", "ycbv", "--dry-run"}
	require.NoError(t, Process(context.Background(), args, te.Env))
	assert.Contains(t, te.stdout.String(), "--nprocs 6")

	te = newTestEnv()
	args = append(args, "--nprocs", "2")
	require.NoError(t, Process(context.Background(), args, te.Env))
	assert.NotContains(t, te.stdout.String(), "--nprocs 6")
	assert.Contains(t, te.stdout.String(), "--nprocs 2")
}

func TestProcess_CommandFailure(t *testing.T) {
	te := newTestEnv()
	root := filepath.Join(t.TempDir(), "ycbv")
	args := []string{"--config", missingConfig(t), "--local_dir", root, "--dataset_name", "ycbv", "--nprocs", "4"}

	first := "python -m src.scripts.convert_scenewise_to_imagewise --input " +
		filepath.Join(root, "test") + " --output " + filepath.Join(root, "tmp", "ycbv_image_wise", "test") + " --nprocs 4"
	te.rec.FailWith(first, 2)

	err := Process(context.Background(), args, te.Env)
	assert.Equal(t, ExitFailure, exitCode(t, err))
	assert.Contains(t, err.Error(), first)
	assert.Contains(t, err.Error(), "return code 2")
	assert.Len(t, te.rec.Commands(), 1)
}

func TestProcess_IgnoresDownloaderSettings(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "machine.hcl")
	require.NoError(t, os.WriteFile(cfgPath, []byte("templates {\n  fetcher = \"curl\"\n}\n"), 0644))

	te := newTestEnv()
	args := []string{"--config", cfgPath, "--local_dir", "/data/lm", "--dataset_name", "lm", "--dry-run"}
	require.NoError(t, Process(context.Background(), args, te.Env))

	te = newTestEnv()
	err := Templates(context.Background(), []string{"--config", cfgPath, "--root", t.TempDir()}, te.Env)
	assert.Equal(t, ExitUsage, exitCode(t, err))
	assert.Contains(t, err.Error(), "templates.fetcher")
}

func TestProcess_InvalidNprocs(t *testing.T) {
	te := newTestEnv()
	args := []string{"--config", missingConfig(t), "--local_dir", "/d", "--dataset_name", "lm", "--nprocs", "0"}
	err := Process(context.Background(), args, te.Env)
	assert.Equal(t, ExitUsage, exitCode(t, err))
}

func TestTemplates_RequiresRoot(t *testing.T) {
	te := newTestEnv()
	err := Templates(context.Background(), []string{"--config", missingConfig(t)}, te.Env)
	assert.Equal(t, ExitUsage, exitCode(t, err))
	assert.Contains(t, err.Error(), "root_dir")
}

func TestTemplates_Installs(t *testing.T) {
	te := newTestEnv()
	root := t.TempDir()
	te.rec.Hook = func(cmd command.Command) error {
		switch cmd.Name {
		case "wget":
			return os.WriteFile(cmd.Args[1], []byte("PK"), 0644)
		case "unzip":
			return os.MkdirAll(filepath.Join(cmd.Args[2], "templates"), 0755)
		}
		return nil
	}

	err := Templates(context.Background(), []string{"--config", missingConfig(t), "--root", root}, te.Env)
	require.NoError(t, err)
	assert.DirExists(t, filepath.Join(root, "datasets", "templates"))
	assert.Contains(t, te.stderr.String(), "Templates successfully moved")
}

func TestTemplates_MissingArchive(t *testing.T) {
	te := newTestEnv()
	root := t.TempDir()
	te.rec.FailWith("wget -O "+filepath.Join(root, "datasets", "tmp", "templates.zip")+" "+config.DefaultSettings().Templates.URL, 4)

	err := Templates(context.Background(), []string{"--config", missingConfig(t), "--root", root}, te.Env)
	assert.Equal(t, ExitFailure, exitCode(t, err))
	assert.Contains(t, err.Error(), "missing archive")

	// extraction was never attempted
	for _, cmd := range te.rec.Commands() {
		assert.NotEqual(t, "unzip", cmd.Name)
	}
	assert.Contains(t, te.stderr.String(), "level=ERROR")
}

func TestTemplates_RootFromConfig(t *testing.T) {
	te := newTestEnv()
	root := t.TempDir()
	cfgPath := filepath.Join(t.TempDir(), "machine.hcl")
	require.NoError(t, os.WriteFile(cfgPath, []byte("machine {\n  root_dir = \""+filepath.ToSlash(root)+"\"\n}\n"), 0644))

	err := Templates(context.Background(), []string{"--config", cfgPath}, te.Env)
	// nothing is fetched by the recorder, so the run stops at the archive check
	assert.Equal(t, ExitFailure, exitCode(t, err))
	require.NotEmpty(t, te.rec.Commands())
	assert.Contains(t, te.rec.Commands()[0].Args[1], filepath.Join(root, "datasets", "tmp"))
}

func TestTemplates_InitConfig(t *testing.T) {
	te := newTestEnv()
	cfgPath := filepath.Join(t.TempDir(), "configs", "machine.hcl")

	err := Templates(context.Background(), []string{"--config", cfgPath, "--root", "/data", "--init-config"}, te.Env)
	require.NoError(t, err)
	assert.Empty(t, te.rec.Commands())

	loaded, err := config.Load(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, "/data", loaded.Machine.RootDir)

	err = Templates(context.Background(), []string{"--config", cfgPath, "--init-config"}, te.Env)
	assert.Equal(t, ExitUsage, exitCode(t, err))
}
