package wire

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// PublishRequest carries a client-streamed batch of messages (spec §6).
type PublishRequest struct {
	TraceMessages []*TraceMessage
}

const publishRequestTraceMessages protowire.Number = 1

func (r *PublishRequest) Marshal() ([]byte, error) {
	var b []byte
	for _, m := range r.TraceMessages {
		if err := appendSubmessage(&b, publishRequestTraceMessages, m); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func (r *PublishRequest) Unmarshal(b []byte) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		switch num {
		case publishRequestTraceMessages:
			m := &TraceMessage{}
			n, err := consumeSubmessage(b, m)
			if err != nil {
				return err
			}
			r.TraceMessages = append(r.TraceMessages, m)
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			b = b[n:]
		}
	}
	return nil
}

// PublishStatus is the periodic heartbeat the publish server emits (spec §4.6).
type PublishStatus struct {
	TotalMessages      uint64
	SuccessfulMessages uint64
	FailedMessages     uint64
	LastError          string
}

const (
	publishStatusTotal protowire.Number = iota + 1
	publishStatusSuccessful
	publishStatusFailed
	publishStatusLastError
)

func (s *PublishStatus) Marshal() ([]byte, error) {
	var b []byte
	b = protowire.AppendTag(b, publishStatusTotal, protowire.VarintType)
	b = protowire.AppendVarint(b, s.TotalMessages)
	b = protowire.AppendTag(b, publishStatusSuccessful, protowire.VarintType)
	b = protowire.AppendVarint(b, s.SuccessfulMessages)
	b = protowire.AppendTag(b, publishStatusFailed, protowire.VarintType)
	b = protowire.AppendVarint(b, s.FailedMessages)
	if s.LastError != "" {
		b = protowire.AppendTag(b, publishStatusLastError, protowire.BytesType)
		b = protowire.AppendString(b, s.LastError)
	}
	return b, nil
}

func (s *PublishStatus) Unmarshal(b []byte) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		switch num {
		case publishStatusTotal:
			x, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			s.TotalMessages, b = x, b[n:]
		case publishStatusSuccessful:
			x, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			s.SuccessfulMessages, b = x, b[n:]
		case publishStatusFailed:
			x, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			s.FailedMessages, b = x, b[n:]
		case publishStatusLastError:
			x, n := protowire.ConsumeString(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			s.LastError, b = x, b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			b = b[n:]
		}
	}
	return nil
}

// PublishResponse wraps the periodic PublishStatus (spec §6).
type PublishResponse struct {
	Status *PublishStatus
}

const publishResponseStatus protowire.Number = 1

func (r *PublishResponse) Marshal() ([]byte, error) {
	var b []byte
	if r.Status != nil {
		if err := appendSubmessage(&b, publishResponseStatus, r.Status); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func (r *PublishResponse) Unmarshal(b []byte) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		switch num {
		case publishResponseStatus:
			s := &PublishStatus{}
			n, err := consumeSubmessage(b, s)
			if err != nil {
				return err
			}
			r.Status, b = s, b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			b = b[n:]
		}
	}
	return nil
}

// SubscribeCmdSubscribe adds a filter (spec §4.7). An empty Filter string
// parses as "match any" per spec §4.7.
type SubscribeCmdSubscribe struct {
	Filter       string
	HasStartTime bool
	StartTime    int64
}

const (
	subCmdSubFilter protowire.Number = iota + 1
	subCmdSubStartTime
)

func (s *SubscribeCmdSubscribe) Marshal() ([]byte, error) {
	var b []byte
	if s.Filter != "" {
		b = protowire.AppendTag(b, subCmdSubFilter, protowire.BytesType)
		b = protowire.AppendString(b, s.Filter)
	}
	if s.HasStartTime {
		b = protowire.AppendTag(b, subCmdSubStartTime, protowire.VarintType)
		b = protowire.AppendVarint(b, protowire.EncodeZigZag(s.StartTime))
	}
	return b, nil
}

func (s *SubscribeCmdSubscribe) Unmarshal(b []byte) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		switch num {
		case subCmdSubFilter:
			x, n := protowire.ConsumeString(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			s.Filter, b = x, b[n:]
		case subCmdSubStartTime:
			x, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			s.StartTime, s.HasStartTime, b = protowire.DecodeZigZag(x), true, b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			b = b[n:]
		}
	}
	return nil
}

// SubscribeCmdUnsubscribe removes a structurally-equal filter.
type SubscribeCmdUnsubscribe struct {
	Filter string
}

const subCmdUnsubFilter protowire.Number = 1

func (s *SubscribeCmdUnsubscribe) Marshal() ([]byte, error) {
	var b []byte
	if s.Filter != "" {
		b = protowire.AppendTag(b, subCmdUnsubFilter, protowire.BytesType)
		b = protowire.AppendString(b, s.Filter)
	}
	return b, nil
}

func (s *SubscribeCmdUnsubscribe) Unmarshal(b []byte) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		switch num {
		case subCmdUnsubFilter:
			x, n := protowire.ConsumeString(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			s.Filter, b = x, b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			b = b[n:]
		}
	}
	return nil
}

// SubscribeRequest is the client->server stream message (spec §6): a oneof
// over Subscribe and Unsubscribe commands.
type SubscribeRequest struct {
	Subscribe   *SubscribeCmdSubscribe
	Unsubscribe *SubscribeCmdUnsubscribe
}

const (
	subReqSubscribe protowire.Number = iota + 1
	subReqUnsubscribe
)

func (r *SubscribeRequest) Marshal() ([]byte, error) {
	var b []byte
	switch {
	case r.Subscribe != nil:
		if err := appendSubmessage(&b, subReqSubscribe, r.Subscribe); err != nil {
			return nil, err
		}
	case r.Unsubscribe != nil:
		if err := appendSubmessage(&b, subReqUnsubscribe, r.Unsubscribe); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("wire: subscribe request has no oneof cmd set")
	}
	return b, nil
}

func (r *SubscribeRequest) Unmarshal(b []byte) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		switch num {
		case subReqSubscribe:
			s := &SubscribeCmdSubscribe{}
			n, err := consumeSubmessage(b, s)
			if err != nil {
				return err
			}
			r.Subscribe, b = s, b[n:]
		case subReqUnsubscribe:
			s := &SubscribeCmdUnsubscribe{}
			n, err := consumeSubmessage(b, s)
			if err != nil {
				return err
			}
			r.Unsubscribe, b = s, b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			b = b[n:]
		}
	}
	return nil
}

// TraceMessageBatch is a batch of outbound messages (spec §6).
type TraceMessageBatch struct {
	Messages []*TraceMessage
}

const traceMessageBatchMessages protowire.Number = 1

func (b2 *TraceMessageBatch) Marshal() ([]byte, error) {
	var b []byte
	for _, m := range b2.Messages {
		if err := appendSubmessage(&b, traceMessageBatchMessages, m); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func (b2 *TraceMessageBatch) Unmarshal(b []byte) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		switch num {
		case traceMessageBatchMessages:
			m := &TraceMessage{}
			n, err := consumeSubmessage(b, m)
			if err != nil {
				return err
			}
			b2.Messages = append(b2.Messages, m)
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			b = b[n:]
		}
	}
	return nil
}

// SubscribeResponse is the server->client stream message (spec §6).
type SubscribeResponse struct {
	Batch *TraceMessageBatch
}

const subRespBatch protowire.Number = 1

func (r *SubscribeResponse) Marshal() ([]byte, error) {
	var b []byte
	if r.Batch != nil {
		if err := appendSubmessage(&b, subRespBatch, r.Batch); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func (r *SubscribeResponse) Unmarshal(b []byte) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		switch num {
		case subRespBatch:
			batch := &TraceMessageBatch{}
			n, err := consumeSubmessage(b, batch)
			if err != nil {
				return err
			}
			r.Batch, b = batch, b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			b = b[n:]
		}
	}
	return nil
}
