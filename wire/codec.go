package wire

import "fmt"

// Codec implements google.golang.org/grpc/encoding.Codec over the
// wireMessage contract, applied explicitly via grpc.ForceCodec /
// grpc.ForceServerCodec rather than registered globally by name — avoids
// depending on codec-name lookup / package init order (see DESIGN.md).
type Codec struct{}

func (Codec) Name() string { return "signaltap-wire" }

func (Codec) Marshal(v any) ([]byte, error) {
	m, ok := v.(wireMessage)
	if !ok {
		return nil, fmt.Errorf("wire: %T does not implement wireMessage", v)
	}
	return m.Marshal()
}

func (Codec) Unmarshal(data []byte, v any) error {
	m, ok := v.(wireMessage)
	if !ok {
		return fmt.Errorf("wire: %T does not implement wireMessage", v)
	}
	return m.Unmarshal(data)
}
