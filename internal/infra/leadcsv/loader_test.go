package leadcsv

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func writeLeadsFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "leads.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const leadsHeader = "First Name,Last Name,Email,Company,Title,City,State,Country,Website,Industry\n"

func TestLoaderLoad(t *testing.T) {
	path := writeLeadsFile(t, leadsHeader+
		"Ada,Lovelace,ADA@Example.COM,Analytical Engines,CTO,London,,United Kingdom,https://ae.example,computing\n"+
		"Grace,Hopper,grace@navy.example,US Navy,RDML,Arlington,VA,United States,,\n")

	pool, err := NewLoader(path, testLogger()).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, pool, 2)

	assert.Equal(t, "ada@example.com", pool[0].Email)
	assert.Equal(t, "Ada", pool[0].FirstName)
	assert.Equal(t, "Analytical Engines", pool[0].Organization)
	assert.Equal(t, "computing", pool[0].Industry)
	assert.Equal(t, "grace@navy.example", pool[1].Email)
	assert.Equal(t, "VA", pool[1].State)
}

func TestLoaderStripsByteOrderMark(t *testing.T) {
	path := writeLeadsFile(t, "\xEF\xBB\xBF"+leadsHeader+
		"Ada,Lovelace,ada@example.com,Analytical Engines,CTO,London,,UK,,\n")

	pool, err := NewLoader(path, testLogger()).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, pool, 1)
	assert.Equal(t, "ada@example.com", pool[0].Email)
}

func TestLoaderSkipsInvalidRows(t *testing.T) {
	path := writeLeadsFile(t, leadsHeader+
		",Lovelace,ada@example.com,Analytical Engines,CTO,London,,UK,,\n"+ // no first name
		"Grace,Hopper,not-an-email,US Navy,RDML,Arlington,VA,US,,\n"+ // bad address
		"Alan,Turing,alan@example.com,,Director,Manchester,,UK,,\n"+ // no organization
		"Joan,Clarke,joan@example.com,GCHQ,Cryptanalyst,Cheltenham,,UK,,\n")

	pool, err := NewLoader(path, testLogger()).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, pool, 1)
	assert.Equal(t, "joan@example.com", pool[0].Email)
}

func TestLoaderDeduplicatesByNormalizedEmail(t *testing.T) {
	path := writeLeadsFile(t, leadsHeader+
		"Ada,Lovelace,ada@example.com,Analytical Engines,CTO,London,,UK,,\n"+
		"Ada,Lovelace,ADA@EXAMPLE.COM,Analytical Engines,CTO,London,,UK,,\n")

	pool, err := NewLoader(path, testLogger()).Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, pool, 1)
}

func TestLoaderMissingColumns(t *testing.T) {
	path := writeLeadsFile(t, "First Name,Email\nAda,ada@example.com\n")

	_, err := NewLoader(path, testLogger()).Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required columns")
	assert.Contains(t, err.Error(), "Last Name")
}

func TestLoaderMissingFile(t *testing.T) {
	_, err := NewLoader(filepath.Join(t.TempDir(), "absent.csv"), testLogger()).Load(context.Background())
	require.Error(t, err)
}

func TestLoaderToleratesShortRows(t *testing.T) {
	path := writeLeadsFile(t, leadsHeader+
		"Ada,Lovelace,ada@example.com\n"+ // field count mismatch
		"Joan,Clarke,joan@example.com,GCHQ,Cryptanalyst,Cheltenham,,UK,,\n")

	pool, err := NewLoader(path, testLogger()).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, pool, 1)
	assert.Equal(t, "joan@example.com", pool[0].Email)
}
