package logging

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntryServiceLoggerDelegates(t *testing.T) {
	entry := newFakeEntry()
	logger := NewEntryServiceLogger(entry)

	logger.Info("locator resolved", LogFields{"provider": "recorder"})

	child := logger.With(LogFields{"kind": "socket-read"})
	child.Debug("commit", LogFields{"bytes": 14})

	boom := errors.New("boom")
	child.Error("sink failed", boom, LogFields{"sink": "kafka"})
	child.Trace("probe", nil)

	logs := entry.recorder.logs
	require.Len(t, logs, 4)

	assert.Equal(t, "info", logs[0].level)
	assert.Equal(t, "locator resolved", logs[0].msg)
	assert.Equal(t, "recorder", logs[0].fields["provider"])

	assert.Equal(t, "debug", logs[1].level)
	assert.Equal(t, "socket-read", logs[1].fields["kind"])
	assert.Equal(t, 14, logs[1].fields["bytes"])

	assert.Equal(t, "error", logs[2].level)
	assert.Same(t, boom, logs[2].err)

	assert.Equal(t, "trace", logs[3].level)
}

func TestEntryServiceLoggerWithNilFieldsReturnsSameLogger(t *testing.T) {
	entry := newFakeEntry()
	logger := NewEntryServiceLogger(entry)
	assert.Same(t, logger, logger.With(nil))
}

func TestConstructorsPanicOnNil(t *testing.T) {
	assert.Panics(t, func() { NewSlogServiceLogger(nil) })
	assert.Panics(t, func() { NewWatermillServiceLogger(nil) })
	assert.Panics(t, func() { NewWatermillAdapter(nil) })
	assert.Panics(t, func() { NewThrottledLogger(nil, time.Second) })
}

func TestWatermillServiceLoggerDelegates(t *testing.T) {
	base := newRecordingWatermillLogger()
	logger := NewWatermillServiceLogger(base)

	logger.Debug("dbg", LogFields{"component": "sink"})
	logger.Info("info", nil)
	logger.Error("oops", errors.New("boom"), LogFields{"failed": true})

	child := logger.With(LogFields{"child": "yes"})
	child.Info("child_info", nil)

	require.Len(t, base.entries, 5)
	assert.Equal(t, "debug", base.entries[0].level)
	assert.Equal(t, "sink", base.entries[0].fields["component"])
	assert.Equal(t, "with", base.entries[3].level)
	assert.Equal(t, "yes", base.entries[3].fields["child"])
}

func TestWatermillAdapterDelegates(t *testing.T) {
	base := &recordingServiceLogger{}
	adapter := NewWatermillAdapter(base)

	adapter.Debug("dbg", watermill.LogFields{"k": "v"})
	adapter.Info("info", nil)
	adapter.Trace("trace", nil)
	adapter.Error("err", errors.New("boom"), nil)

	require.Len(t, base.entries, 4)
	assert.Equal(t, "v", base.entries[0].fields["k"])
	assert.Nil(t, base.entries[1].fields)
}

func TestSlogServiceLoggerWritesStructuredFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewSlogServiceLogger(slog.New(slog.NewTextHandler(&buf, nil)))

	logger.Info("gateway resolved", LogFields{"provider": "recorder"})

	assert.Contains(t, buf.String(), "gateway resolved")
	assert.Contains(t, buf.String(), "provider=recorder")
}

func TestDiscardServiceLoggerIsSilent(t *testing.T) {
	logger := NewDiscardServiceLogger()
	assert.NotPanics(t, func() {
		logger.Error("ignored", errors.New("boom"), LogFields{"k": "v"})
		logger.With(LogFields{"a": 1}).Info("ignored", nil)
	})
}

func TestThrottledLoggerSuppressesBursts(t *testing.T) {
	base := &recordingServiceLogger{}
	throttled := NewThrottledLogger(base, time.Minute)

	now := time.Unix(1000, 0)
	throttled.now = func() time.Time { return now }

	throttled.Error("sink failed", errors.New("1"), nil)
	throttled.Error("sink failed", errors.New("2"), nil)
	throttled.Error("sink failed", errors.New("3"), nil)
	require.Len(t, base.entries, 1)

	now = now.Add(2 * time.Minute)
	throttled.Error("sink failed", errors.New("4"), LogFields{"sink": "io"})

	require.Len(t, base.entries, 2)
	assert.Equal(t, 2, base.entries[1].fields["suppressed"])
	assert.Equal(t, "io", base.entries[1].fields["sink"])
}

func TestThrottledLoggerPassesOtherLevels(t *testing.T) {
	base := &recordingServiceLogger{}
	throttled := NewThrottledLogger(base, time.Hour)

	throttled.Info("a", nil)
	throttled.Info("b", nil)
	throttled.Debug("c", nil)

	assert.Len(t, base.entries, 3)
}

func TestWatermillFieldConversions(t *testing.T) {
	assert.Nil(t, toWatermillFields(nil))
	assert.Nil(t, fromWatermillFields(nil))

	wm := toWatermillFields(LogFields{"a": 1})
	assert.Equal(t, 1, wm["a"])
	assert.Equal(t, 1, fromWatermillFields(wm)["a"])
}

type recordingWatermillLogger struct {
	entries []watermillEntry
	sink    *[]watermillEntry
}

type watermillEntry struct {
	level  string
	fields watermill.LogFields
	err    error
}

func newRecordingWatermillLogger() *recordingWatermillLogger {
	logger := &recordingWatermillLogger{}
	logger.sink = &logger.entries
	return logger
}

func (r *recordingWatermillLogger) record(entry watermillEntry) {
	*r.sink = append(*r.sink, entry)
}

func (r *recordingWatermillLogger) Error(msg string, err error, fields watermill.LogFields) {
	r.record(watermillEntry{level: "error", fields: fields, err: err})
}

func (r *recordingWatermillLogger) Info(msg string, fields watermill.LogFields) {
	r.record(watermillEntry{level: "info", fields: fields})
}

func (r *recordingWatermillLogger) Debug(msg string, fields watermill.LogFields) {
	r.record(watermillEntry{level: "debug", fields: fields})
}

func (r *recordingWatermillLogger) Trace(msg string, fields watermill.LogFields) {
	r.record(watermillEntry{level: "trace", fields: fields})
}

func (r *recordingWatermillLogger) With(fields watermill.LogFields) watermill.LoggerAdapter {
	child := &recordingWatermillLogger{sink: r.sink}
	child.record(watermillEntry{level: "with", fields: fields})
	return child
}

type loggedEntry struct {
	level  string
	msg    string
	fields LogFields
	err    error
}

type recordingServiceLogger struct {
	entries []loggedEntry
}

func (r *recordingServiceLogger) With(fields LogFields) ServiceLogger {
	return &recordingServiceLogger{entries: []loggedEntry{{level: "with", fields: fields}}}
}

func (r *recordingServiceLogger) Debug(msg string, fields LogFields) {
	r.entries = append(r.entries, loggedEntry{level: "debug", msg: msg, fields: fields})
}

func (r *recordingServiceLogger) Info(msg string, fields LogFields) {
	r.entries = append(r.entries, loggedEntry{level: "info", msg: msg, fields: fields})
}

func (r *recordingServiceLogger) Error(msg string, err error, fields LogFields) {
	r.entries = append(r.entries, loggedEntry{level: "error", msg: msg, fields: fields, err: err})
}

func (r *recordingServiceLogger) Trace(msg string, fields LogFields) {
	r.entries = append(r.entries, loggedEntry{level: "trace", msg: msg, fields: fields})
}

type fakeEntry struct {
	recorder *entryRecorder
	fields   LogFields
	err      error
}

type entryRecorder struct {
	logs []loggedEntry
}

func newFakeEntry() *fakeEntry {
	return &fakeEntry{recorder: &entryRecorder{}}
}

func (f *fakeEntry) clone() *fakeEntry {
	fields := make(LogFields, len(f.fields))
	for k, v := range f.fields {
		fields[k] = v
	}
	return &fakeEntry{recorder: f.recorder, fields: fields, err: f.err}
}

func (f *fakeEntry) Error(args ...any) { f.append("error", args...) }
func (f *fakeEntry) Info(args ...any)  { f.append("info", args...) }
func (f *fakeEntry) Debug(args ...any) { f.append("debug", args...) }
func (f *fakeEntry) Trace(args ...any) { f.append("trace", args...) }

func (f *fakeEntry) WithError(err error) *fakeEntry {
	clone := f.clone()
	clone.err = err
	return clone
}

func (f *fakeEntry) WithField(key string, value any) *fakeEntry {
	clone := f.clone()
	clone.fields[key] = value
	return clone
}

func (f *fakeEntry) append(level string, args ...any) {
	f.recorder.logs = append(f.recorder.logs, loggedEntry{
		level:  level,
		msg:    fmt.Sprint(args...),
		fields: f.fields,
		err:    f.err,
	})
}
