package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hnrobert/ltspacct/internal/auth"
	"github.com/hnrobert/ltspacct/internal/usercmd"
)

type fakeCommander struct {
	existing map[string]bool
	badGroup string
	added    []string
	joined   []string
}

func (f *fakeCommander) UserAdd(_ context.Context, username, _, hash string) error {
	if f.existing[username] {
		return fmt.Errorf("%w: useradd: user '%s' already exists", usercmd.ErrNameInUse, username)
	}
	if !strings.HasPrefix(hash, "$6$") {
		return fmt.Errorf("unexpected hash %q", hash)
	}
	f.added = append(f.added, username)
	return nil
}

func (f *fakeCommander) AddToGroup(_ context.Context, username, group string) error {
	if group == f.badGroup {
		return fmt.Errorf("usermod: group '%s' does not exist", group)
	}
	f.joined = append(f.joined, username+":"+group)
	return nil
}

type harness struct {
	root string
	cfg  string
	out  bytes.Buffer
	app  *App
}

func newHarness(t *testing.T, in string) *harness {
	t.Helper()
	h := &harness{root: t.TempDir()}
	require.NoError(t, os.MkdirAll(filepath.Join(h.root, "etc"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(h.root, "root", "move"), 0o755))
	h.cfg = filepath.Join(h.root, "ltspacct.yaml")
	require.NoError(t, os.WriteFile(h.cfg, []byte(fmt.Sprintf("host_root: %s\ngroups: [users, pupil]\nlog_level: error\n", h.root)), 0o644))
	h.app = &App{In: strings.NewReader(in), Out: &h.out, ErrOut: &h.out}
	return h
}

func (h *harness) write(t *testing.T, rel, content string) string {
	t.Helper()
	path := filepath.Join(h.root, rel)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func (h *harness) run(args ...string) error {
	root := NewRootCommand(h.app)
	root.SetArgs(append([]string{"--config", h.cfg}, args...))
	return root.Execute()
}

func TestReconcileCommand(t *testing.T) {
	h := newHarness(t, "")
	h.write(t, "etc/group", "bob:x:100:\ncarol:x:101:\n")
	h.write(t, "root/move/group.mig", "carol:x:999:\ndave:x:102:\n")

	require.NoError(t, h.run("reconcile", "--schema", "group", "--dry-run"))
	assert.Contains(t, h.out.String(), "would add 1: dave")

	require.NoError(t, h.run("reconcile", "--schema", "group"))
	assert.Contains(t, h.out.String(), "added 1: dave")

	b, err := os.ReadFile(filepath.Join(h.root, "etc", "group"))
	require.NoError(t, err)
	assert.Equal(t, "bob:x:100:\ncarol:x:101:\ndave:x:102:\n", string(b))
}

func TestReconcileCommandReportsMissingFiles(t *testing.T) {
	h := newHarness(t, "")
	h.write(t, "etc/passwd", "root:x:0:0:root:/root:/bin/bash\n")

	err := h.run("reconcile", "--schema", "passwd,shadow")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "passwd.mig")
	assert.Contains(t, err.Error(), "shadow")
	assert.Contains(t, h.out.String(), "passwd   failed")
}

func TestReconcileCommandUnknownSchema(t *testing.T) {
	h := newHarness(t, "")
	assert.Error(t, h.run("reconcile", "--schema", "hosts"))
}

func TestPlanCommand(t *testing.T) {
	h := newHarness(t, "")
	src := h.write(t, "users.csv", "alice, |Alice Smith|\nbob,pw\ncarol |Year 7|\n")

	require.NoError(t, h.run("plan", src, "--default-password", "changeme"))
	assert.Contains(t, h.out.String(), "3 accounts from "+src)
	assert.Contains(t, h.out.String(), "Username - carol : Password - changeme\n")
	assert.Contains(t, h.out.String(), "Username - alice : Password - changeme\n")
	assert.Contains(t, h.out.String(), "Username - bob : Password - pw\n")
}

func TestImportCommand(t *testing.T) {
	h := newHarness(t, "")
	cmd := &fakeCommander{existing: map[string]bool{"bob": true}}
	h.app.Commander = cmd
	src := h.write(t, "users.csv", "alice,a1\nbob,b1\ncarol,\n")
	reportPath := filepath.Join(h.root, "report.md")

	err := h.run("import", src, "--default-password", "changeme", "--yes", "--report", reportPath)
	require.Error(t, err, "a failed row makes the command fail")
	assert.Contains(t, err.Error(), "Imported 2 of 3 accounts (1 failed).")
	assert.Contains(t, err.Error(), "line 2 bob: already exists")

	assert.Equal(t, []string{"alice", "carol"}, cmd.added)
	assert.Equal(t, []string{"alice:users", "alice:pupil", "carol:users", "carol:pupil"}, cmd.joined)

	b, err := os.ReadFile(reportPath)
	require.NoError(t, err)
	assert.Contains(t, string(b), "| 2 | bob | failed |")
}

func TestImportCommandDeclined(t *testing.T) {
	h := newHarness(t, "n\n")
	cmd := &fakeCommander{}
	h.app.Commander = cmd
	src := h.write(t, "users.csv", "alice,a1\n")

	require.NoError(t, h.run("import", src, "--default-password", "x"))
	assert.Contains(t, h.out.String(), "Import cancelled, nothing was changed.")
	assert.Empty(t, cmd.added)
}

func TestImportCommandRejectsInvalidSource(t *testing.T) {
	h := newHarness(t, "")
	cmd := &fakeCommander{}
	h.app.Commander = cmd
	src := h.write(t, "users.csv", "alice,a1\njohn doe,pw1\n")

	err := h.run("import", src, "--default-password", "x", "--yes")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "username contains whitespace")
	assert.Empty(t, cmd.added)
}

func TestGroupsCommand(t *testing.T) {
	h := newHarness(t, "")
	cmd := &fakeCommander{badGroup: "pupil"}
	h.app.Commander = cmd

	err := h.run("groups", "alice")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not join pupil")
	assert.Equal(t, []string{"alice:users"}, cmd.joined)
}

func TestVerifyCommand(t *testing.T) {
	hasher, err := auth.NewHasher(auth.SchemeSHA512)
	require.NoError(t, err)
	hash, err := hasher.Hash("secret")
	require.NoError(t, err)

	h := newHarness(t, "secret\n")
	h.write(t, "etc/shadow", "alice:"+hash+":19000:0:99999:7:::\nbob:!:19000:0:99999:7:::\n")
	require.NoError(t, h.run("verify", "alice"))
	assert.Contains(t, h.out.String(), "alice: password OK")

	h.app.In = strings.NewReader("wrong\n")
	err = h.run("verify", "alice")
	require.Error(t, err)
	assert.Equal(t, "Invalid username or password.", err.Error())

	h.app.In = strings.NewReader("x\n")
	err = h.run("verify", "bob")
	require.Error(t, err)
	assert.Equal(t, "This account is locked.", err.Error())

	err = h.run("verify", "nobody")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no shadow entry")
}

func TestVerifyCommandFallsBackToSu(t *testing.T) {
	h := newHarness(t, "secret\n")
	h.write(t, "etc/shadow", "carol:$y$j9T$salt$hash:19000:0:99999:7:::\n")
	var asked string
	h.app.Su = func(username, password string) (bool, error) {
		asked = username
		return password == "secret", nil
	}
	require.NoError(t, h.run("verify", "carol"))
	assert.Equal(t, "carol", asked)
}
