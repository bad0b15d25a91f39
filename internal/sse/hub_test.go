package sse

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/basedmerge/tokengate/internal/model"
	"github.com/basedmerge/tokengate/internal/testutil"
)

func TestFormatSSEMessage(t *testing.T) {
	tests := []struct {
		name      string
		eventName string
		data      string
		expected  string
	}{
		{
			name:      "single line data",
			eventName: "state_changed",
			data:      `{"state":"ready"}`,
			expected:  "event: state_changed\ndata: {\"state\":\"ready\"}\n\n",
		},
		{
			name:      "multi-line data",
			eventName: "state_changed",
			data:      "line1\nline2",
			expected:  "event: state_changed\ndata: line1\ndata: line2\n\n",
		},
		{
			name:      "empty data",
			eventName: "ping",
			data:      "",
			expected:  "event: ping\ndata: \n\n",
		},
		{
			name:      "data with carriage returns",
			eventName: "test",
			data:      "line1\r\nline2",
			expected:  "event: test\ndata: line1\ndata: line2\n\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := formatSSEMessage(tt.eventName, tt.data)
			if string(result) != tt.expected {
				t.Errorf("formatSSEMessage(%q, %q)\ngot:  %q\nwant: %q",
					tt.eventName, tt.data, string(result), tt.expected)
			}
		})
	}
}

func TestSplitLines(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "single line",
			input:    "hello",
			expected: []string{"hello"},
		},
		{
			name:     "two lines",
			input:    "line1\nline2",
			expected: []string{"line1", "line2"},
		},
		{
			name:     "trailing newline",
			input:    "line1\n",
			expected: []string{"line1"},
		},
		{
			name:     "empty string",
			input:    "",
			expected: []string{""},
		},
		{
			name:     "crlf line endings",
			input:    "line1\r\nline2\r\n",
			expected: []string{"line1", "line2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := splitLines(tt.input)
			if len(result) != len(tt.expected) {
				t.Errorf("splitLines(%q) returned %d lines, want %d",
					tt.input, len(result), len(tt.expected))
				return
			}
			for i, line := range result {
				if line != tt.expected[i] {
					t.Errorf("splitLines(%q)[%d] = %q, want %q",
						tt.input, i, line, tt.expected[i])
				}
			}
		})
	}
}

func TestHub_RegisterAndBroadcast(t *testing.T) {
	hub := NewHub(testutil.NopLogger())
	go hub.Run()
	defer hub.Close()

	client := NewClient(hub, "127.0.0.1:1111")
	hub.Register(client)

	// Give the hub time to process registration
	time.Sleep(10 * time.Millisecond)

	if hub.ClientCount() != 1 {
		t.Errorf("ClientCount() = %d, want 1", hub.ClientCount())
	}

	hub.BroadcastEvent("test-event", "test data")

	select {
	case msg := <-client.send:
		expected := "event: test-event\ndata: test data\n\n"
		if string(msg) != expected {
			t.Errorf("client received %q, want %q", string(msg), expected)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("client did not receive message")
	}
}

func TestHub_Unregister(t *testing.T) {
	hub := NewHub(testutil.NopLogger())
	go hub.Run()
	defer hub.Close()

	client := NewClient(hub, "127.0.0.1:1111")
	hub.Register(client)

	time.Sleep(10 * time.Millisecond)

	if hub.ClientCount() != 1 {
		t.Errorf("ClientCount() = %d, want 1", hub.ClientCount())
	}

	hub.Unregister(client)
	time.Sleep(10 * time.Millisecond)

	if hub.ClientCount() != 0 {
		t.Errorf("ClientCount() = %d after unregister, want 0", hub.ClientCount())
	}
}

func TestHub_BroadcastToMultipleClients(t *testing.T) {
	hub := NewHub(testutil.NopLogger())
	go hub.Run()
	defer hub.Close()

	client1 := NewClient(hub, "127.0.0.1:1111")
	client2 := NewClient(hub, "127.0.0.1:2222")
	client3 := NewClient(hub, "127.0.0.1:3333")

	hub.Register(client1)
	hub.Register(client2)
	hub.Register(client3)

	time.Sleep(10 * time.Millisecond)

	if hub.ClientCount() != 3 {
		t.Errorf("ClientCount() = %d, want 3", hub.ClientCount())
	}

	hub.BroadcastEvent("update", "data")

	for i, client := range []*Client{client1, client2, client3} {
		select {
		case msg := <-client.send:
			expected := "event: update\ndata: data\n\n"
			if string(msg) != expected {
				t.Errorf("client %d received %q, want %q", i+1, string(msg), expected)
			}
		case <-time.After(100 * time.Millisecond):
			t.Errorf("client %d did not receive message", i+1)
		}
	}
}

func TestStream_PublishStateChange(t *testing.T) {
	hub := NewHub(testutil.NopLogger())
	go hub.Run()
	defer hub.Close()

	client := NewClient(hub, "127.0.0.1:1111")
	hub.Register(client)
	time.Sleep(10 * time.Millisecond)

	stream := NewStream(hub, testutil.NopLogger())
	stream.Publish(model.Event{
		Type:      model.EventStateChanged,
		Timestamp: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
		Address:   "0xaaa",
		Payload: model.StateChangedPayload{
			State:  model.StateReady,
			Status: "Ready to play",
		},
	})

	select {
	case msg := <-client.send:
		raw := string(msg)
		if want := "event: state_changed\n"; raw[:len(want)] != want {
			t.Fatalf("unexpected event name in %q", raw)
		}
		var got envelope
		if err := json.Unmarshal([]byte(raw[len("event: state_changed\ndata: "):len(raw)-2]), &got); err != nil {
			t.Fatalf("payload is not valid JSON: %v", err)
		}
		if got.Type != "state_changed" || got.Address != "0xaaa" {
			t.Errorf("unexpected envelope %+v", got)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("client did not receive published event")
	}
}
