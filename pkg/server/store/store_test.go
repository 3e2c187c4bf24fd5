package store

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

func TestDecodeRecords(t *testing.T) {
	records, err := DecodeRecords[item]([]byte(" [{\"id\":\"1\"},{\"id\":\"2\",\"name\":\"two\"}]\n"))
	require.NoError(t, err)
	assert.Equal(t, []item{{ID: "1"}, {ID: "2", Name: "two"}}, records)

	records, err = DecodeRecords[item]([]byte("[]"))
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)

	for _, bad := range []string{"", "null", "{}", "[", "\"x\""} {
		_, err := DecodeRecords[item]([]byte(bad))
		assert.Error(t, err, "input %q", bad)
	}
}

func TestEncodeRecords(t *testing.T) {
	data, err := EncodeRecords[item](nil)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))

	data, err = EncodeRecords([]item{{ID: "1"}})
	require.NoError(t, err)
	assert.Equal(t, "[\n  {\n    \"id\": \"1\"\n  }\n]\n", string(data))
}

func TestStorageErrors(t *testing.T) {
	readErr := fmt.Errorf("listing: %w", &ReadError{Collection: "groups", Err: fs.ErrNotExist})
	assert.ErrorIs(t, readErr, ErrStorageRead)
	assert.ErrorIs(t, readErr, fs.ErrNotExist)
	assert.NotErrorIs(t, readErr, ErrStorageWrite)
	assert.Contains(t, readErr.Error(), "failed to read collection groups")

	writeErr := &WriteError{Collection: "members", Err: errors.New("disk full")}
	assert.ErrorIs(t, writeErr, ErrStorageWrite)
	assert.NotErrorIs(t, writeErr, ErrStorageRead)
	assert.Equal(t, "failed to write collection members: disk full", writeErr.Error())
}
