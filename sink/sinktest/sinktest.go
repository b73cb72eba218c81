// Package sinktest provides a config and a recording publisher for sink
// tests.
package sinktest

import (
	"errors"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
)

// Config is a plain struct implementing sink.Config.
type Config struct {
	System        string
	Topic         string
	KafkaBrokers  []string
	KafkaClientID string
	RabbitMQURL   string
	NATSURL       string
	HTTPURL       string
	IOFile        string
	SQLiteFile    string
	PostgresURL   string
	AWSRegion     string
	AWSAccountID  string
	AWSAccessKey  string
	AWSSecretKey  string
	AWSEndpoint   string
	AWSMode       string
}

func (c *Config) GetSinkSystem() string         { return c.System }
func (c *Config) GetSinkTopic() string          { return c.Topic }
func (c *Config) GetKafkaBrokers() []string     { return c.KafkaBrokers }
func (c *Config) GetKafkaClientID() string      { return c.KafkaClientID }
func (c *Config) GetRabbitMQURL() string        { return c.RabbitMQURL }
func (c *Config) GetNATSURL() string            { return c.NATSURL }
func (c *Config) GetHTTPPublisherURL() string   { return c.HTTPURL }
func (c *Config) GetIOFile() string             { return c.IOFile }
func (c *Config) GetSQLiteFile() string         { return c.SQLiteFile }
func (c *Config) GetPostgresURL() string        { return c.PostgresURL }
func (c *Config) GetAWSRegion() string          { return c.AWSRegion }
func (c *Config) GetAWSAccountID() string       { return c.AWSAccountID }
func (c *Config) GetAWSAccessKeyID() string     { return c.AWSAccessKey }
func (c *Config) GetAWSSecretAccessKey() string { return c.AWSSecretKey }
func (c *Config) GetAWSEndpoint() string        { return c.AWSEndpoint }
func (c *Config) GetAWSMode() string            { return c.AWSMode }

// ErrClosed is returned by Publish after Close.
var ErrClosed = errors.New("sinktest: publisher closed")

// Published is one recorded Publish call.
type Published struct {
	Topic    string
	Messages []*message.Message
}

// Publisher records every published message.
type Publisher struct {
	mu     sync.Mutex
	calls  []Published
	closed bool

	// Err, when set, is returned from Publish.
	Err error
}

func (p *Publisher) Publish(topic string, messages ...*message.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	if p.Err != nil {
		return p.Err
	}
	p.calls = append(p.calls, Published{Topic: topic, Messages: messages})
	return nil
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

// Calls returns the recorded publish calls.
func (p *Publisher) Calls() []Published {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Published(nil), p.calls...)
}

// Messages returns every published message in order.
func (p *Publisher) Messages() []*message.Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []*message.Message
	for _, c := range p.calls {
		out = append(out, c.Messages...)
	}
	return out
}

// Closed reports whether Close was called.
func (p *Publisher) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}
