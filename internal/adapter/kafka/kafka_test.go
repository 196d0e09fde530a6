package kafka

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/couchcryptid/geotag/internal/domain"
	"github.com/jonboulle/clockwork"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	msgs   []kafkago.Message
	err    error
	closed bool
}

func (r *recordingWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	if r.err != nil {
		return r.err
	}
	r.msgs = append(r.msgs, msgs...)
	return nil
}

func (r *recordingWriter) Close() error {
	r.closed = true
	return nil
}

func testFeature(t *testing.T) domain.Feature {
	t.Helper()
	f, err := domain.BuildFeature(
		domain.MediaFile{Path: "/trip/IMG_7.JPG", Name: "IMG_7.JPG"},
		domain.NewGpsCoordinate(35.0, -97.0),
		domain.CaptureMetadata{CapturedAt: "2024:04:26 15:10:00", Year: "2024", Device: "iPhone 15"},
		domain.UnknownPlace,
	)
	require.NoError(t, err)
	return f
}

func TestSerializeToMessage(t *testing.T) {
	now := time.Date(2024, 4, 26, 15, 10, 0, 0, time.UTC)

	msg, err := serializeToMessage(testFeature(t), now)
	require.NoError(t, err)

	assert.Equal(t, []byte("IMG_7.JPG"), msg.Key)
	assert.Contains(t, string(msg.Value), `"coordinates":[-97,35]`)
	assert.Contains(t, string(msg.Value), `"DateTime":"2024:04:26 15:10:00"`)
	require.Len(t, msg.Headers, 3)
	assert.Equal(t, "device", msg.Headers[0].Key)
	assert.Equal(t, []byte("iPhone 15"), msg.Headers[0].Value)
	assert.Equal(t, "published_at", msg.Headers[2].Key)
	assert.Equal(t, []byte(now.Format(time.RFC3339)), msg.Headers[2].Value)
}

func TestWriter_Publish(t *testing.T) {
	domain.SetClock(clockwork.NewFakeClockAt(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
	defer domain.SetClock(nil)

	rec := &recordingWriter{}
	w := &Writer{writer: rec, logger: slog.New(slog.NewTextHandler(io.Discard, nil))}

	require.NoError(t, w.Publish(context.Background(), nil))
	assert.Empty(t, rec.msgs)

	require.NoError(t, w.Publish(context.Background(), []domain.Feature{testFeature(t), testFeature(t)}))
	assert.Len(t, rec.msgs, 2)
	assert.Equal(t, []byte("2024-01-01T00:00:00Z"), rec.msgs[0].Headers[2].Value)

	require.NoError(t, w.Close())
	assert.True(t, rec.closed)
}

func TestWriter_PublishError(t *testing.T) {
	rec := &recordingWriter{err: errors.New("leader not available")}
	w := &Writer{writer: rec, logger: slog.New(slog.NewTextHandler(io.Discard, nil))}

	err := w.Publish(context.Background(), []domain.Feature{testFeature(t)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "leader not available")
}
