package pile

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gostkin/data-pile/codec"
)

func TestNewBuilder_Defaults(t *testing.T) {
	b := NewBuilder()
	assert.Equal(t, int64(defaultFlatFileMapSize), b.flatFileMapSize)
	assert.Equal(t, int64(defaultSeqNoIndexMapSize), b.seqNoIndexMapSize)
	assert.Equal(t, 4096, b.changefeedSize)
	assert.Equal(t, 100, b.hotKeyTopN)
	assert.NotNil(t, b.logger)
}

func TestBuilder_FluentSettersOverrideDefaults(t *testing.T) {
	logger := slog.Default()
	b := NewBuilder().
		FlatFileMapSize(123).
		SeqNoIndexMapSize(456).
		WithSerializer(codec.LengthPrefixed{}).
		WithLogger(logger).
		WithChangefeedCapacity(10).
		WithHotKeyTopN(5)

	assert.Equal(t, int64(123), b.flatFileMapSize)
	assert.Equal(t, int64(456), b.seqNoIndexMapSize)
	assert.Equal(t, codec.LengthPrefixed{}, b.serializer)
	assert.Same(t, logger, b.logger)
	assert.Equal(t, 10, b.changefeedSize)
	assert.Equal(t, 5, b.hotKeyTopN)
}

func TestBuilder_OpenFailsWithoutSerializer(t *testing.T) {
	dir := t.TempDir()
	_, err := NewBuilder().Open(dir)
	require.Error(t, err)
}

func TestBuilder_OpenFailsWhenPathIsAFile(t *testing.T) {
	dir := t.TempDir()
	filePath := filepath.Join(dir, "not-a-dir")
	require.NoError(t, os.WriteFile(filePath, []byte("x"), 0o644))

	_, err := NewBuilder().WithSerializer(codec.LengthPrefixed{}).Open(filePath)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotDirectory)
}
