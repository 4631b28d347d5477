package importer

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hnrobert/ltspacct/internal/record"
)

func TestParseBatch(t *testing.T) {
	in := "alice,\nbob,secret\ncarol\n|dan|,|pw with space|\nerin,pw,extra column\n"
	batch, err := ParseBatch(strings.NewReader(in), "changeme")
	require.NoError(t, err)
	assert.Equal(t, Batch{
		{Line: 1, Username: "alice", Password: "changeme"},
		{Line: 2, Username: "bob", Password: "secret"},
		{Line: 3, Username: "carol", Password: "changeme"},
		{Line: 4, Username: "dan", Password: "|pw"},
		{Line: 5, Username: "erin", Password: "pw"},
	}, batch)
}

func TestParseBatchIgnoresLaterSegments(t *testing.T) {
	in := "alice |Alice Smith|\nbob 2024\ncarol \ndave,pw |Dave Jones|\n"
	batch, err := ParseBatch(strings.NewReader(in), "changeme")
	require.NoError(t, err)
	assert.Equal(t, Batch{
		{Line: 1, Username: "alice", Password: "changeme"},
		{Line: 2, Username: "bob", Password: "changeme"},
		{Line: 3, Username: "carol", Password: "changeme"},
		{Line: 4, Username: "dave", Password: "pw"},
	}, batch)
}

func TestParseBatchLongRow(t *testing.T) {
	in := "alice,pw\n" + strings.Repeat("x", maxRow+1) + "\nbob,pw\n"
	batch, err := ParseBatch(strings.NewReader(in), "changeme")
	require.Error(t, err)
	assert.Nil(t, batch)
	assert.ErrorIs(t, err, ErrValidation)

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, 2, ve.Line)
	assert.Contains(t, ve.Reason, "row longer than")

	batch, err = ParseBatch(strings.NewReader("alice,"+strings.Repeat("p", 70000)+"\n"), "changeme")
	require.NoError(t, err)
	require.Len(t, batch, 1)
	assert.Len(t, batch[0].Password, 70000)
}

func TestParseBatchQuotedSegment(t *testing.T) {
	batch, err := ParseBatch(strings.NewReader("|frank,pass word| trailing\n|a||b,pw|\n"), "d")
	require.NoError(t, err)
	require.Len(t, batch, 2)
	assert.Equal(t, "frank", batch[0].Username)
	assert.Equal(t, "pass word", batch[0].Password)
	assert.Equal(t, "a|b", batch[1].Username)
}

func TestParseBatchRejects(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		line     int
		username string
		reason   string
	}{
		{name: "space in username", in: "john doe,pw1\n", line: 1, username: "john doe", reason: "whitespace"},
		{name: "quoted space in username", in: "ok,pw\n|john doe|,pw1\n", line: 2, username: "john doe", reason: "whitespace"},
		{name: "tab in username", in: "john\tdoe,pw\n", line: 1, username: "john\tdoe", reason: "whitespace"},
		{name: "space in username with extra column", in: "john doe,pw1 |John Doe|\n", line: 1, username: "john doe", reason: "whitespace"},
		{name: "username split before password", in: "ok,pw\nmary ann jones,pw\n", line: 2, username: "mary ann jones", reason: "whitespace"},
		{name: "empty row", in: "alice,pw\n\nbob,pw\n", line: 2, reason: "empty row"},
		{name: "missing username", in: ",pw\n", line: 1, reason: "missing username"},
		{name: "unterminated quote", in: "|alice,pw\n", line: 1, reason: "unterminated"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			batch, err := ParseBatch(strings.NewReader(tt.in), "changeme")
			require.Error(t, err)
			assert.Nil(t, batch, "no partial batch")
			assert.True(t, errors.Is(err, ErrValidation))

			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.line, ve.Line)
			assert.Equal(t, tt.username, ve.Username)
			assert.Contains(t, ve.Reason, tt.reason)
		})
	}
}

func TestParseBatchNeedsSomePassword(t *testing.T) {
	_, err := ParseBatch(strings.NewReader("alice\n"), "")
	assert.ErrorIs(t, err, ErrValidation)

	batch, err := ParseBatch(strings.NewReader("alice,own\n"), "")
	require.NoError(t, err)
	assert.Equal(t, "own", batch[0].Password)
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.csv")
	require.NoError(t, os.WriteFile(path, []byte("alice,\nbad name,pw\n"), 0o644))

	_, err := ParseFile(path, "changeme")
	require.Error(t, err)
	assert.Contains(t, err.Error(), path)
	assert.Contains(t, err.Error(), "line 2")

	_, err = ParseFile(filepath.Join(t.TempDir(), "missing.csv"), "changeme")
	require.Error(t, err)
	assert.ErrorIs(t, err, record.ErrIO)
	assert.Contains(t, err.Error(), "missing.csv")
}

func TestSplitSegments(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{in: "", want: nil},
		{in: "a", want: []string{"a"}},
		{in: "a b", want: []string{"a", "b"}},
		{in: "a  b", want: []string{"a", "", "b"}},
		{in: "|a b| c", want: []string{"a b", "c"}},
		{in: "|a||b|", want: []string{"a|b"}},
		{in: "|a|x y", want: []string{"ax", "y"}},
		{in: "a ", want: []string{"a", ""}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := splitSegments(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
