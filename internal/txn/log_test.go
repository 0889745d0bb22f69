package txn

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TrendScope/internal/model"
)

const sampleLog = `2024-01-02 BOL.ST BUY

2024-02-05 VOLV-B.ST BUY
2024-03-01 BOL.ST SELL
`

func TestRead(t *testing.T) {
	txns, err := Read(strings.NewReader(sampleLog))
	require.NoError(t, err)
	require.Len(t, txns, 3)
	assert.Equal(t, "VOLV-B.ST", txns[1].Ticker)
	assert.Equal(t, model.SideSell, txns[2].Side)
	assert.Equal(t, "2024-03-01", txns[2].Date.Format(model.DateFormat))
}

func TestReadMatching(t *testing.T) {
	txns, err := ReadMatching(strings.NewReader(sampleLog), "BOL.ST")
	require.NoError(t, err)
	require.Len(t, txns, 2)
	for _, tx := range txns {
		assert.Equal(t, "BOL.ST", tx.Ticker)
	}
}

func TestReadBadLine(t *testing.T) {
	_, err := Read(strings.NewReader("2024-01-02 BOL.ST HOLD\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 1")

	_, err = Read(strings.NewReader("2024-01-02 BOL.ST\n"))
	require.Error(t, err)
}

func TestWriteRead(t *testing.T) {
	in, err := Read(strings.NewReader(sampleLog))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, in))
	out, err := Read(&buf)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestLoadMatchingMissingFile(t *testing.T) {
	txns, err := LoadMatching(filepath.Join(t.TempDir(), "txn.txt"), "BOL.ST")
	require.NoError(t, err)
	assert.Empty(t, txns)
}
