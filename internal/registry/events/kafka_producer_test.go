package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/gartstein/registry/internal/registry/models"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

// MockKafkaWriter implements KafkaWriter for testing
type MockKafkaWriter struct {
	mock.Mock
}

func (m *MockKafkaWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	args := m.Called(ctx, msgs)
	return args.Error(0)
}

func (m *MockKafkaWriter) Close() error {
	args := m.Called()
	return args.Error(0)
}

func testCompany() *models.Company {
	return &models.Company{ID: "c-1", Name: "Acme", EmployeeIDs: []string{}}
}

func TestNewEvent(t *testing.T) {
	ev := NewEvent(EmployeeAdded, testCompany(), &models.Employee{EmployeeID: "e1"})

	assert.Equal(t, EmployeeAdded, ev.Type)
	assert.Equal(t, "c-1", ev.CompanyID)
	assert.Equal(t, "e1", ev.EmployeeID())
	assert.False(t, ev.OccurredAt.IsZero())

	cleared := NewEvent(CompaniesCleared, nil, nil)
	assert.Empty(t, cleared.CompanyID)
	assert.Empty(t, cleared.EmployeeID())
}

func TestProducer_Produce(t *testing.T) {
	t.Run("successful produce", func(t *testing.T) {
		producer := newProducer(new(MockKafkaWriter), zaptest.NewLogger(t), 10)

		producer.Produce(context.Background(), NewEvent(CompanyCreated, testCompany(), nil))

		assert.Equal(t, 1, len(producer.events))
	})

	t.Run("dropped event when queue full", func(t *testing.T) {
		core, recorded := observer.New(zap.WarnLevel)
		producer := newProducer(new(MockKafkaWriter), zap.New(core), 1)
		event := NewEvent(CompanyCreated, testCompany(), nil)

		producer.Produce(context.Background(), event)
		producer.Produce(context.Background(), event) // This should be dropped

		assert.Equal(t, 1, recorded.FilterMessage("Kafka producer queue full, dropping event").Len())
		assert.Equal(t, 1, recorded.FilterField(zap.String("company_id", "c-1")).Len())
	})
}

func TestProducer_SendEvent(t *testing.T) {
	company := testCompany()

	t.Run("successful send", func(t *testing.T) {
		mockWriter := new(MockKafkaWriter)
		mockWriter.On("WriteMessages", mock.Anything, mock.Anything).Return(nil)
		producer := newProducer(mockWriter, zaptest.NewLogger(t), 1)

		event := NewEvent(CompanyCreated, company, nil)
		producer.sendEvent(context.Background(), event)

		mockWriter.AssertCalled(t, "WriteMessages", mock.Anything, []kafka.Message{
			{
				Key:   []byte(company.ID),
				Value: mustMarshal(t, event),
			},
		})
	})

	t.Run("serialization error", func(t *testing.T) {
		core, recorded := observer.New(zap.ErrorLevel)
		producer := newProducer(new(MockKafkaWriter), zap.New(core), 1)

		oldMarshal := jsonMarshal
		jsonMarshal = func(_ interface{}) ([]byte, error) {
			return nil, errors.New("mock marshal error")
		}
		defer func() { jsonMarshal = oldMarshal }()

		producer.sendEvent(context.Background(), NewEvent(CompanyCreated, company, nil))

		assert.Equal(t, 1, recorded.FilterMessage("Failed to serialize event").Len())
		assert.Equal(t, 1, recorded.FilterField(zap.String("company_id", company.ID)).Len())
	})

	t.Run("write error", func(t *testing.T) {
		core, recorded := observer.New(zap.ErrorLevel)
		mockWriter := new(MockKafkaWriter)
		mockWriter.On("WriteMessages", mock.Anything, mock.Anything).Return(errors.New("kafka error"))
		producer := newProducer(mockWriter, zap.New(core), 1)

		producer.sendEvent(context.Background(), NewEvent(CompanyDeleted, company, nil))

		assert.Equal(t, 1, recorded.FilterMessage("Failed to produce event").Len())
	})
}

func TestProducer_CloseFlushesQueue(t *testing.T) {
	mockWriter := new(MockKafkaWriter)
	mockWriter.On("WriteMessages", mock.Anything, mock.Anything).Return(nil)
	mockWriter.On("Close").Return(nil)

	producer := newProducer(mockWriter, zaptest.NewLogger(t), 10)
	for i := 0; i < 3; i++ {
		producer.Produce(context.Background(), NewEvent(CompanyUpdated, testCompany(), nil))
	}
	go producer.eventLoop()

	producer.Close()

	mockWriter.AssertNumberOfCalls(t, "WriteMessages", 3)
	mockWriter.AssertCalled(t, "Close")
	select {
	case <-producer.done:
	default:
		t.Error("event loop still running after Close")
	}
}

func TestProducer_EventLoop(t *testing.T) {
	sent := make(chan struct{}, 1)
	mockWriter := new(MockKafkaWriter)
	mockWriter.On("WriteMessages", mock.Anything, mock.Anything).Return(nil).Run(func(mock.Arguments) {
		sent <- struct{}{}
	})
	mockWriter.On("Close").Return(nil)

	producer := newProducer(mockWriter, zaptest.NewLogger(t), 1)
	go producer.eventLoop()
	defer producer.Close()

	producer.events <- NewEvent(CompanyCreated, testCompany(), nil)

	select {
	case <-sent:
	case <-time.After(time.Second):
		t.Fatal("event was not delivered by the loop")
	}
}

func TestFanout(t *testing.T) {
	first := newProducer(new(MockKafkaWriter), zaptest.NewLogger(t), 5)
	second := newProducer(new(MockKafkaWriter), zaptest.NewLogger(t), 5)
	fan := Fanout{first, Nop{}, second}

	fan.Produce(context.Background(), NewEvent(CompanyCreated, testCompany(), nil))

	assert.Len(t, first.events, 1)
	assert.Len(t, second.events, 1)
}

func mustMarshal(t *testing.T, ev Event) []byte {
	t.Helper()
	data, err := json.Marshal(ev)
	require.NoError(t, err)
	return data
}
