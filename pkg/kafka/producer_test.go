package kafka

import (
	"encoding/json"
	"testing"
	"time"
)

func TestEncode(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	msgs, err := encode([]Event{
		{Key: "ranked", Value: map[string]int{"hits": 3}, Time: at},
		{Key: "boolean", Value: []string{"cat"}},
	})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if len(msgs) != 2 || string(msgs[0].Key) != "ranked" || !msgs[0].Time.Equal(at) {
		t.Fatalf("unexpected messages %+v", msgs)
	}
	var v map[string]int
	if err := json.Unmarshal(msgs[0].Value, &v); err != nil || v["hits"] != 3 {
		t.Fatalf("value = %s, %v", msgs[0].Value, err)
	}
}

func TestEncodeRejectsUnmarshalable(t *testing.T) {
	if _, err := encode([]Event{{Key: "bad", Value: make(chan int)}}); err == nil {
		t.Fatal("expected marshal error")
	}
}
