package mqtt

// outbound is one serialized publish held for replay after a reconnect.
type outbound struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// backlog holds publishes made while the broker is unreachable, keeping the
// newest messages up to its capacity and counting whatever it had to
// discard. Not safe for concurrent use; the publisher synchronizes around
// it because paho callbacks run on client goroutines.
type backlog struct {
	msgs     []outbound
	capacity int
	dropped  int
}

func newBacklog(capacity int) *backlog {
	return &backlog{capacity: capacity}
}

// add queues msg, discarding the oldest message when full.
func (b *backlog) add(msg outbound) {
	if len(b.msgs) == b.capacity {
		b.dropped++
		copy(b.msgs, b.msgs[1:])
		b.msgs[len(b.msgs)-1] = msg
		return
	}
	b.msgs = append(b.msgs, msg)
}

// take empties the backlog and returns its contents oldest first.
func (b *backlog) take() []outbound {
	if len(b.msgs) == 0 {
		return nil
	}
	out := b.msgs
	b.msgs = nil
	b.dropped = 0
	return out
}

// size returns the number of queued messages.
func (b *backlog) size() int {
	return len(b.msgs)
}

// discarded returns how many messages were dropped since the last take.
func (b *backlog) discarded() int {
	return b.dropped
}
