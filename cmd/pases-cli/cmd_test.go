package main

import (
	"bytes"
	"errors"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/mimmersdev/pases-universitarios/internal/auth"
	"github.com/mimmersdev/pases-universitarios/internal/config"
	"github.com/mimmersdev/pases-universitarios/internal/models"
	"github.com/mimmersdev/pases-universitarios/internal/passes"
	"github.com/mimmersdev/pases-universitarios/internal/store"
	"github.com/mimmersdev/pases-universitarios/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T, password string) (*commandLine, *bytes.Buffer) {
	t.Helper()
	cfg := config.Default()
	cfg.Database.Path = filepath.Join(t.TempDir(), "cli.db")
	out := &bytes.Buffer{}
	cli := &commandLine{cfg: cfg, out: out}
	t.Cleanup(cli.close)

	previous := readPasswordFunc
	readPasswordFunc = func(int) ([]byte, error) { return []byte(password), nil }
	t.Cleanup(func() { readPasswordFunc = previous })
	return cli, out
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
}

func runCases(t *testing.T, cli *commandLine, tests []cliTest) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(append([]string{"pases-cli"}, tt.args...))
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.wantErrStr != "":
				assert.ErrorContains(t, err, tt.wantErrStr)
			default:
				assert.NoError(t, err)
			}
		})
	}
}

func Test_commandLine_usage(t *testing.T) {
	cli, out := setup(t, "secret123")
	runCases(t, cli, []cliTest{
		{name: "no command", args: nil, wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
	})
	assert.Contains(t, out.String(), "Usage:")
}

func Test_commandLine_addUser(t *testing.T) {
	cli, _ := setup(t, "secret123")
	runCases(t, cli, []cliTest{
		{name: "no username", args: []string{"adduser"}, wantErr: errHelp},
		{name: "bad role", args: []string{"adduser", "-username", "ana", "-role", "root"}, wantErrStr: "role must be admin or staff"},
		{name: "create", args: []string{"adduser", "-username", "ana"}},
		{name: "update", args: []string{"adduser", "-username", "ana", "-role", "admin"}},
	})

	st, err := cli.openStore()
	require.NoError(t, err)
	user, err := st.GetUserByUsername("ana")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, user.Role)
	assert.True(t, auth.CheckPasswordHash("secret123", user.PasswordHash))
}

func Test_commandLine_addUser_EmptyPassword(t *testing.T) {
	cli, _ := setup(t, "")
	runCases(t, cli, []cliTest{
		{name: "empty password", args: []string{"adduser", "-username", "ana"}, wantErr: errHelp},
	})
}

func Test_commandLine_migrate(t *testing.T) {
	cli, out := setup(t, "")
	runCases(t, cli, []cliTest{
		{name: "version before migrating", args: []string{"migrate", "version"}},
		{name: "up", args: []string{"migrate"}},
		{name: "up again", args: []string{"migrate", "up"}},
		{name: "unknown", args: []string{"migrate", "sideways"}, wantErrStr: `"sideways": no such command`},
	})
	assert.Contains(t, out.String(), "Schema version 0")
	assert.Contains(t, out.String(), "Schema version 1")
}

func Test_commandLine_import(t *testing.T) {
	server, _ := testutil.SetupTestServer(t)
	testutil.GetAuthCookie(t, server, "staff", "secret123", models.RoleStaff)
	universityID := testutil.SeedUniversity(t, server.Store(), "SIS")

	ts := httptest.NewServer(server.Router())
	defer ts.Close()

	header := []any{passes.ColUniqueIdentifier, passes.ColCareerID, passes.ColName, passes.ColEnrollmentYear, passes.ColPaymentStatus}
	dir := t.TempDir()
	good := filepath.Join(dir, "good.xlsx")
	require.NoError(t, os.WriteFile(good, testutil.Workbook(t, header,
		[]any{"1", "SIS", "Ana", 2023, "paid"},
		[]any{"2", "SIS", "Luis", 2023, "pending"},
	), 0o644))
	mixed := filepath.Join(dir, "mixed.xlsx")
	require.NoError(t, os.WriteFile(mixed, testutil.Workbook(t, header,
		[]any{"3", "SIS", "Eva", 2023, "paid"},
		[]any{"4", "ART", "Sol", 2023, "paid"},
	), 0o644))

	args := func(file string) []string {
		return []string{"import", "-server", ts.URL, "-username", "staff", "-university", universityID, "-file", file}
	}

	t.Run("all rows imported", func(t *testing.T) {
		cli, out := setup(t, "secret123")
		cli.client = ts.Client()
		require.NoError(t, cli.run(append([]string{"pases-cli"}, args(good)...)))
		assert.Contains(t, out.String(), "Created 2 passes from good.xlsx")
		assert.Contains(t, out.String(), "Processed 2/2 (100%)")
	})

	t.Run("failed rows fail the command", func(t *testing.T) {
		cli, out := setup(t, "secret123")
		cli.client = ts.Client()
		err := cli.run(append([]string{"pases-cli"}, args(mixed)...))
		assert.True(t, errors.Is(err, errImportFailures))
		assert.Contains(t, out.String(), "Created 1 passes from mixed.xlsx")
		assert.Contains(t, out.String(), "4 / ART")
	})

	t.Run("wrong password", func(t *testing.T) {
		cli, _ := setup(t, "nope")
		cli.client = ts.Client()
		err := cli.run(append([]string{"pases-cli"}, args(good)...))
		assert.ErrorContains(t, err, "login failed: Invalid username or password")
	})

	t.Run("legacy workbook", func(t *testing.T) {
		cli, _ := setup(t, "secret123")
		err := cli.run(append([]string{"pases-cli"}, args(filepath.Join(dir, "old.xls"))...))
		assert.ErrorContains(t, err, "only .xlsx workbooks")
	})

	t.Run("missing flags", func(t *testing.T) {
		cli, _ := setup(t, "secret123")
		assert.ErrorIs(t, cli.run([]string{"pases-cli", "import", "-file", good}), errHelp)
	})

	page, err := server.Store().ListPasses(universityID, store.PassQuery{})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
}
