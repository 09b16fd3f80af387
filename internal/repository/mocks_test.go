package repository

import (
	"context"
	"encoding/json"

	"github.com/stretchr/testify/mock"

	"github.com/qarzbook/ledgercore/internal/transport"
)

type MockTransport struct {
	mock.Mock
}

func (m *MockTransport) Request(ctx context.Context, method, path string, body any) (*transport.Envelope, error) {
	args := m.Called(ctx, method, path, body)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transport.Envelope), args.Error(1)
}

func okEnvelope(data string) *transport.Envelope {
	return &transport.Envelope{Success: true, Status: 200, Data: json.RawMessage(data)}
}

func failEnvelope(status int, message string) *transport.Envelope {
	return &transport.Envelope{Success: false, Status: status, Message: message}
}
