package recorder

import (
	"errors"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drblury/netflight/gateway"
)

func sampleRecord(kind gateway.Kind) Record {
	return Record{
		Kind: kind,
		Event: gateway.Event{
			Start:    gateway.Ticks(time.Millisecond),
			Duration: gateway.Ticks(2 * time.Millisecond),
			Host:     "example",
			Address:  "203.0.113.5",
			Port:     443,
			Bytes:    14,
		},
		Time:     time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Provider: ProviderName,
	}
}

func TestRecordEndpoint(t *testing.T) {
	r := sampleRecord(gateway.SocketWrite)
	assert.Equal(t, "example/203.0.113.5:443", r.Endpoint())

	r.Event = gateway.Event{Host: gateway.UnixSocketHost, Address: "[/tmp/sock]"}
	assert.Equal(t, "Unix domain socket/[/tmp/sock]", r.Endpoint())

	r.Event = gateway.Event{Address: "::1", Port: 53}
	assert.Equal(t, "[::1]:53", r.Endpoint())
}

func TestRecordData(t *testing.T) {
	data := sampleRecord(gateway.SocketWrite).Data()
	assert.Equal(t, "socket-write", data["kind"])
	assert.Equal(t, "2026-01-02T03:04:05Z", data["start"])
	assert.Equal(t, int64(2*time.Millisecond), data["durationNs"])
	assert.Equal(t, int64(14), data["bytes"])
	assert.Equal(t, "example", data["host"])
	assert.NotContains(t, data, "endOfStream")
	assert.NotContains(t, data, "error")

	read := sampleRecord(gateway.SocketRead)
	read.Event.EndOfStream = true
	read.Event.Timeout = time.Second
	read.Event.Err = "i/o timeout"
	data = read.Data()
	assert.Equal(t, true, data["endOfStream"])
	assert.Equal(t, int64(time.Second), data["timeoutNs"])
	assert.Equal(t, "i/o timeout", data["error"])
}

func TestSinkFuncAndDiscard(t *testing.T) {
	var got Record
	f := SinkFunc(func(r Record) error {
		got = r
		return errors.New("nope")
	})
	assert.EqualError(t, f.Record(sampleRecord(gateway.DatagramSend)), "nope")
	assert.Equal(t, gateway.DatagramSend, got.Kind)
	assert.NoError(t, Discard.Record(got))
}

func TestMemoryRing(t *testing.T) {
	m := NewMemory(3)
	assert.Empty(t, m.Records())

	for i := 1; i <= 5; i++ {
		r := sampleRecord(gateway.SocketRead)
		r.Event.Bytes = int64(i)
		require.NoError(t, m.Record(r))
	}

	records := m.Records()
	require.Len(t, records, 3)
	assert.Equal(t, []int64{3, 4, 5}, []int64{records[0].Event.Bytes, records[1].Event.Bytes, records[2].Event.Bytes})
	assert.Equal(t, uint64(5), m.Total())

	m.Reset()
	assert.Empty(t, m.Records())
	assert.Zero(t, m.Total())
}

func TestNewMemoryDefaultCapacity(t *testing.T) {
	m := NewMemory(0)
	for i := 0; i < DefaultMemoryCapacity+1; i++ {
		require.NoError(t, m.Record(Record{}))
	}
	assert.Len(t, m.Records(), DefaultMemoryCapacity)
}

type capturingLogger struct {
	watermill.NopLogger
	msgs   []string
	fields []watermill.LogFields
}

func (c *capturingLogger) Info(msg string, fields watermill.LogFields) {
	c.msgs = append(c.msgs, msg)
	c.fields = append(c.fields, fields)
}

func TestLogSink(t *testing.T) {
	logger := &capturingLogger{}
	r := sampleRecord(gateway.SocketRead)
	r.Event.EndOfStream = true

	require.NoError(t, NewLogSink(logger).Record(r))

	require.Len(t, logger.msgs, 1)
	assert.Equal(t, "Network event", logger.msgs[0])
	assert.Equal(t, "socket-read", logger.fields[0]["kind"])
	assert.Equal(t, "example/203.0.113.5:443", logger.fields[0]["endpoint"])
	assert.Equal(t, true, logger.fields[0]["end_of_stream"])

	assert.NoError(t, NewLogSink(nil).Record(r))
}
