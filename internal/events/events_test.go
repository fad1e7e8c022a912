package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/codr1/pickup/internal/config"
)

type recordingPublisher struct {
	keys   []string
	ctxErr error
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, routingKey string, data any) error {
	p.keys = append(p.keys, routingKey)
	p.ctxErr = ctx.Err()
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func TestNewPublisherFromConfigWithoutURLIsNoop(t *testing.T) {
	publisher, err := NewPublisherFromConfig(config.EventsConfig{Exchange: config.DefaultEventsExchange})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := publisher.(NoopPublisher); !ok {
		t.Fatalf("expected NoopPublisher, got %T", publisher)
	}
	if err := publisher.Publish(context.Background(), GameCreated, nil); err != nil {
		t.Fatalf("noop publish: %v", err)
	}
}

func TestEmitDetachesFromCanceledRequest(t *testing.T) {
	publisher := &recordingPublisher{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	Emit(ctx, publisher, AccountCreated, AccountCreatedData{AccountID: "a-1"})

	if len(publisher.keys) != 1 || publisher.keys[0] != AccountCreated {
		t.Fatalf("keys = %v", publisher.keys)
	}
	if publisher.ctxErr != nil {
		t.Fatalf("publish context should not inherit cancellation, got %v", publisher.ctxErr)
	}
}

func TestEmitSwallowsPublishErrors(t *testing.T) {
	publisher := &recordingPublisher{err: errors.New("broker down")}
	Emit(context.Background(), publisher, GameCreated, GameCreatedData{GameID: "g-1"})
	Emit(context.Background(), nil, GameCreated, GameCreatedData{GameID: "g-1"})

	if len(publisher.keys) != 1 {
		t.Fatalf("expected one attempt, got %d", len(publisher.keys))
	}
}

func TestEnvelopeJSON(t *testing.T) {
	start := time.Date(2030, 3, 11, 15, 0, 0, 0, time.UTC)
	envelope := newEnvelope(GameCreated, GameCreatedData{GameID: "g-1", Sport: "soccer", StartTime: start})

	raw, err := json.Marshal(envelope)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded struct {
		ID   string `json:"id"`
		Type string `json:"type"`
		Data struct {
			GameID    string    `json:"game_id"`
			Sport     string    `json:"sport"`
			StartTime time.Time `json:"start_time"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.ID == "" || decoded.Type != GameCreated {
		t.Fatalf("unexpected envelope %+v", decoded)
	}
	if decoded.Data.GameID != "g-1" || decoded.Data.Sport != "soccer" || !decoded.Data.StartTime.Equal(start) {
		t.Fatalf("unexpected data %+v", decoded.Data)
	}
}
