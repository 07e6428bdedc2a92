package kinesis

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"pricing-service/internal/pricing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/kinesis"
)

const putTimeout = 5 * time.Second

// KinesisAPI interface for mocking
type KinesisAPI interface {
	PutRecord(ctx context.Context, params *kinesis.PutRecordInput, optFns ...func(*kinesis.Options)) (*kinesis.PutRecordOutput, error)
}

type Streamer struct {
	client     KinesisAPI
	streamName string
}

type QuoteEvent struct {
	QuoteID      string    `json:"quote_id"`
	EventType    string    `json:"event_type"` // quoted
	Timestamp    time.Time `json:"timestamp"`
	Service      string    `json:"service"`
	Kind         string    `json:"kind"`
	MilesRounded *int      `json:"miles_rounded,omitempty"`
	Subtotal     float64   `json:"subtotal"`
	Period       string    `json:"period,omitempty"`
	Multiplier   float64   `json:"multiplier"`
	DiscountRate float64   `json:"discount_rate"`
	Total        float64   `json:"total"`
	CallForQuote bool      `json:"call_for_quote"`
	ConfigSource string    `json:"config_source"`
}

func NewStreamer(client KinesisAPI, streamName string) *Streamer {
	return &Streamer{
		client:     client,
		streamName: streamName,
	}
}

// NewQuoteEvent flattens a quote into a stream record
func NewQuoteEvent(eventType, quoteID, configSource string, q *pricing.Quote) QuoteEvent {
	return QuoteEvent{
		QuoteID:      quoteID,
		EventType:    eventType,
		Timestamp:    time.Now().UTC(),
		Service:      q.Service,
		Kind:         string(q.Kind),
		MilesRounded: q.Breakdown.MilesRounded,
		Subtotal:     q.Subtotal,
		Period:       q.Multiplier.Period,
		Multiplier:   q.Multiplier.Multiplier,
		DiscountRate: q.DiscountRate,
		Total:        q.Total,
		CallForQuote: q.CallForQuote,
		ConfigSource: configSource,
	}
}

// StreamQuoteEvent puts one record keyed by quote ID. Errors are logged, not returned.
func (s *Streamer) StreamQuoteEvent(event QuoteEvent) {
	if s == nil || s.client == nil {
		return // Kinesis not enabled
	}

	data, err := json.Marshal(event)
	if err != nil {
		slog.Error("Failed to marshal quote event", "quote_id", event.QuoteID, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), putTimeout)
	defer cancel()

	_, err = s.client.PutRecord(ctx, &kinesis.PutRecordInput{
		StreamName:   aws.String(s.streamName),
		Data:         data,
		PartitionKey: aws.String(event.QuoteID),
	})

	if err != nil {
		slog.Error("Failed to stream quote event", "quote_id", event.QuoteID, "event_type", event.EventType, "error", err)
	} else {
		slog.Debug("Streamed quote event", "quote_id", event.QuoteID, "event_type", event.EventType)
	}
}
