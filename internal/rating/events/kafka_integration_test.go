//go:build integration

package events_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"microflix/internal/rating/events"
	"microflix/pkg/testutil/containers"
)

func TestKafkaSinkProducesKeyedRecords(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	rp := containers.GetManager().GetRedpanda(t)
	const topic = "microflix.rating-events.test"
	rp.CreateTopic(ctx, t, topic)

	producer, err := kgo.NewClient(kgo.SeedBrokers(rp.Broker))
	require.NoError(t, err)
	defer producer.Close()

	rate := 8.5
	sink := events.NewKafkaSink(producer, topic)
	require.NoError(t, sink.Write(ctx, []events.Event{
		{Type: events.TypeRatingSaved, UserID: "u-1", MovieID: 42, Rate: &rate, OccurredAt: time.Now().UTC()},
	}))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(rp.Broker),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	defer consumer.Close()

	fetches := consumer.PollFetches(ctx)
	require.NoError(t, fetches.Err())
	records := fetches.Records()
	require.Len(t, records, 1)

	assert.Equal(t, "42", string(records[0].Key))
	var got events.Event
	require.NoError(t, json.Unmarshal(records[0].Value, &got))
	assert.Equal(t, events.TypeRatingSaved, got.Type)
	require.NotNil(t, got.Rate)
	assert.Equal(t, 8.5, *got.Rate)
}
