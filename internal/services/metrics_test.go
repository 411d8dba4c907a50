package services

import (
	"context"
	"sync"
	"testing"
	"time"
)

type channelClient struct {
	received chan MetricSample
}

func (c *channelClient) WriteJSON(v interface{}) error {
	if sample, ok := v.(MetricSample); ok {
		select {
		case c.received <- sample:
		default:
		}
	}
	return nil
}

func TestMetricsHubDeliversToSubscriber(t *testing.T) {
	hub := NewMetricsHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	client := &channelClient{received: make(chan MetricSample, 1)}
	hub.Add(client)
	defer hub.Remove(client)

	sample := MetricSample{CapturedAt: time.Now().UTC(), SystemCpuLoad: 0.5}
	hub.Broadcast(sample)

	select {
	case got := <-client.received:
		if got.SystemCpuLoad != 0.5 {
			t.Errorf("sample = %+v", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("sample never delivered")
	}
}

func TestMetricsHubConcurrentSubscribers(t *testing.T) {
	hub := NewMetricsHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				client := &channelClient{received: make(chan MetricSample, 1)}
				hub.Add(client)
				hub.Broadcast(MetricSample{CapturedAt: time.Now().UTC()})
				hub.Remove(client)
			}
		}()
	}
	wg.Wait()
}
