// Package queryevents publishes one Kafka message per served query.
package queryevents

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/IBM/sarama"

	"github.com/mohammed-shakir/incident-explorer/internal/core/model"
	"github.com/mohammed-shakir/incident-explorer/internal/core/observability"
	"github.com/mohammed-shakir/incident-explorer/internal/filter"
)

type Event struct {
	Key           string              `json:"key"`
	Year          int                 `json:"year"`
	Districts     []string            `json:"districts"`
	Weekdays      []model.Weekday     `json:"weekdays"`
	HourLow       int                 `json:"hour_low"`
	HourHigh      int                 `json:"hour_high"`
	AgeCategories []model.AgeCategory `json:"age_categories"`
	Points        int                 `json:"points"`
	CauseRows     int                 `json:"cause_rows"`
	MonthRows     int                 `json:"month_rows"`
	Scenario      string              `json:"scenario,omitempty"`
	Source        string              `json:"source,omitempty"`
	TS            time.Time           `json:"ts"`
}

// FromQuery summarises one served query. Source names the cache tier that
// answered, or "compute".
func FromQuery(key string, p filter.Params, res model.QueryResult, scenario, source string) Event {
	return Event{
		Key:           key,
		Year:          p.TargetYear,
		Districts:     p.Districts,
		Weekdays:      p.Weekdays,
		HourLow:       p.HourLow,
		HourHigh:      p.HourHigh,
		AgeCategories: p.AgeCategories,
		Points:        len(res.Points),
		CauseRows:     len(res.CauseTable),
		MonthRows:     len(res.MonthlyTable),
		Scenario:      scenario,
		Source:        source,
		TS:            time.Now().UTC(),
	}
}

// Sink accepts events without blocking the request path.
type Sink interface {
	Publish(ev Event)
}

type Publisher struct {
	topic   string
	events  chan Event
	prod    sarama.AsyncProducer
	logger  *slog.Logger
	stopped chan struct{}

	mu     sync.RWMutex
	closed bool
}

func NewPublisher(brokers []string, topic string, queueSize int, logger *slog.Logger) (*Publisher, error) {
	cfg := sarama.NewConfig()
	cfg.Version = sarama.V2_5_0_0
	cfg.Producer.Return.Errors = true
	cfg.Producer.Return.Successes = false
	cfg.Producer.RequiredAcks = sarama.WaitForLocal

	prod, err := sarama.NewAsyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("queryevents: create async producer: %w", err)
	}
	return NewWithProducer(prod, topic, queueSize, logger), nil
}

// NewWithProducer takes ownership of prod.
func NewWithProducer(prod sarama.AsyncProducer, topic string, queueSize int, logger *slog.Logger) *Publisher {
	if queueSize <= 0 {
		queueSize = 1024
	}
	p := &Publisher{
		topic:   topic,
		events:  make(chan Event, queueSize),
		prod:    prod,
		logger:  logger,
		stopped: make(chan struct{}),
	}

	go func() {
		defer close(p.stopped)
		for ev := range p.events {
			b, err := json.Marshal(ev)
			if err != nil {
				p.logger.Warn("queryevents: marshal", "err", err)
				continue
			}
			p.prod.Input() <- &sarama.ProducerMessage{
				Topic: p.topic,
				Key:   sarama.StringEncoder(ev.Key),
				Value: sarama.ByteEncoder(b),
			}
		}
	}()

	go func() {
		for err := range p.prod.Errors() {
			if err != nil {
				p.logger.Warn("queryevents: producer error", "err", err.Err, "topic", err.Msg.Topic)
			}
		}
	}()

	return p
}

// Publish drops the event when the queue is full or the publisher is closed.
func (p *Publisher) Publish(ev Event) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return
	}
	select {
	case p.events <- ev:
	default:
		observability.IncQueryEventDropped()
	}
}

// Close drains queued events into the producer and closes it.
func (p *Publisher) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.events)
	p.mu.Unlock()

	<-p.stopped
	if err := p.prod.Close(); err != nil {
		return fmt.Errorf("queryevents: close producer: %w", err)
	}
	return nil
}
