package mq

import (
	"context"
	"encoding/json"
	"log"

	"tengri/models"
	"tengri/rdx"
)

// ChangeChannel carries entity-change events for orders, passengers and
// tours. Events say only that something changed; subscribers re-fetch.
const ChangeChannel = "entity-events"

// Emit publishes a change event. Failures are logged and swallowed: the
// feed is best-effort, the record store stays the source of truth.
func Emit(ctx context.Context, ev models.Change) {
	if rdx.Conn == nil {
		return
	}
	data, err := json.Marshal(ev)
	if err != nil {
		log.Printf("[MQ] marshal change event: %v", err)
		return
	}
	if err := rdx.Conn.Publish(ctx, ChangeChannel, data).Err(); err != nil {
		log.Printf("[MQ] publish change event: %v", err)
	}
}

// Subscribe returns a channel of decoded change events. The channel closes
// when ctx is done.
func Subscribe(ctx context.Context) <-chan models.Change {
	out := make(chan models.Change, 16)
	sub := rdx.Conn.Subscribe(ctx, ChangeChannel)
	ch := sub.Channel()

	go func() {
		defer close(out)
		defer sub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var ev models.Change
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					log.Printf("[MQ] bad change event payload: %v", err)
					continue
				}
				out <- ev
			}
		}
	}()
	return out
}
