package jsoncodec

import (
	"bufio"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Kind  string `json:"kind"`
	Bytes int64  `json:"bytes"`
}

func TestMarshalAndUnmarshal(t *testing.T) {
	in := sample{Kind: "socket-write", Bytes: 14}
	data, err := Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"socket-write","bytes":14}`, string(data))

	var out sample
	require.NoError(t, Unmarshal(data, &out))
	assert.Equal(t, in, out)
}

func TestAppendLineFramesRecords(t *testing.T) {
	var buf []byte
	var err error
	buf, err = AppendLine(buf, sample{Kind: "socket-read", Bytes: 1})
	require.NoError(t, err)
	buf, err = AppendLine(buf, sample{Kind: "socket-read", Bytes: 2})
	require.NoError(t, err)

	scanner := bufio.NewScanner(bytes.NewReader(buf))
	var got []sample
	for scanner.Scan() {
		var s sample
		require.NoError(t, Unmarshal(scanner.Bytes(), &s))
		got = append(got, s)
	}
	require.Len(t, got, 2)
	assert.Equal(t, int64(2), got[1].Bytes)
}

func TestAppendLineKeepsDestinationOnError(t *testing.T) {
	dst := []byte("prefix")
	out, err := AppendLine(dst, make(chan int))
	assert.Error(t, err)
	assert.Equal(t, "prefix", string(out))
}

func TestEncodeAndDecode(t *testing.T) {
	buf := &bytes.Buffer{}
	require.NoError(t, Encode(buf, sample{Kind: "datagram-send", Bytes: 7}))

	var decoded sample
	require.NoError(t, Decode(buf, &decoded))
	assert.Equal(t, int64(7), decoded.Bytes)
}
