package xmlenc

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDecoder_Latin1(t *testing.T) {
	doc := []byte("<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?><name>caf\xe9</name>")

	var name string
	require.NoError(t, NewDecoder(bytes.NewReader(doc)).Decode(&name))
	assert.Equal(t, "café", name)
}

func TestCharsetReader_Unknown(t *testing.T) {
	_, err := CharsetReader("no-such-charset", bytes.NewReader(nil))
	assert.Error(t, err)
}
