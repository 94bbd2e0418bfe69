package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/Houmeecl/pilotonotary-backend/internal/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func TestKafkaPublisherWritesEnvelope(t *testing.T) {
	w := &recordingWriter{}
	p := NewKafkaPublisher(w, zap.NewNop())

	err := p.Publish(context.Background(), Event{
		Type:    DocumentCertified,
		Key:     DocumentKey(42),
		ActorID: "C1",
		Payload: map[string]any{"document_id": 42},
	})
	require.NoError(t, err)
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "document:42", string(msg.Key))
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, DocumentCertified, string(msg.Headers[0].Value))

	var got Event
	require.NoError(t, json.Unmarshal(msg.Value, &got))
	assert.Equal(t, DocumentCertified, got.Type)
	assert.Equal(t, "C1", got.ActorID)
	assert.NotEmpty(t, got.ID)
	assert.False(t, got.OccurredAt.IsZero())
}

func TestKafkaPublisherSurfacesWriteErrors(t *testing.T) {
	p := NewKafkaPublisher(&recordingWriter{err: errors.New("broker down")}, zap.NewNop())

	err := p.Publish(context.Background(), Event{Type: DocumentRejected, Key: DocumentKey(1)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), DocumentRejected)
}

func TestAsyncDeliveryFailuresAreCounted(t *testing.T) {
	w := NewWriter([]string{"127.0.0.1:9092"}, "certification.events", zap.NewNop())
	require.NotNil(t, w.Completion)
	assert.True(t, w.Async)

	msgs := []kafka.Message{
		{Key: []byte(DocumentKey(1)), Headers: []kafka.Header{{Key: "event_type", Value: []byte(DocumentCertified)}}},
		{Key: []byte(DocumentKey(2))},
	}

	before := testutil.ToFloat64(metrics.EventPublishErrors)
	w.Completion(msgs, nil)
	assert.Equal(t, before, testutil.ToFloat64(metrics.EventPublishErrors))

	w.Completion(msgs, errors.New("leader not available"))
	assert.Equal(t, before+2, testutil.ToFloat64(metrics.EventPublishErrors))
	assert.Equal(t, DocumentCertified, eventType(msgs[0]))
	assert.Empty(t, eventType(msgs[1]))
}
