package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// BookingEvent is the payload published after booking mutations. It
// carries enough of the flight to render a confirmation without another
// lookup on the consumer side.
type BookingEvent struct {
	Type            string    `json:"type"`
	BookingID       uuid.UUID `json:"booking_id"`
	Reference       string    `json:"booking_reference"`
	FlightID        uuid.UUID `json:"flight_id"`
	FlightNumber    string    `json:"flight_number"`
	Airline         string    `json:"airline"`
	FromLocation    string    `json:"from_location"`
	FromAirport     string    `json:"from_airport"`
	ToLocation      string    `json:"to_location"`
	ToAirport       string    `json:"to_airport"`
	DepartureTime   time.Time `json:"departure_time"`
	ContactEmail    string    `json:"contact_email"`
	PassengerCount  int       `json:"passenger_count"`
	TotalPriceCents int64     `json:"total_price_cents"`
	Status          string    `json:"status"`
}

type Producer struct {
	brokers []string
	writer  *kafka.Writer
}

func NewProducer(brokers []string) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 50 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
		Async:        false,
	}

	return &Producer{
		brokers: brokers,
		writer:  writer,
	}
}

func (p *Producer) Publish(ctx context.Context, topic, key string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	message := kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: data,
		Time:  time.Now(),
	}

	if err := p.writer.WriteMessages(ctx, message); err != nil {
		return fmt.Errorf("failed to write message to Kafka: %w", err)
	}
	return nil
}

func (p *Producer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}

// CheckConnection dials the first broker and lists partitions; used at
// worker startup to fail fast on a bad broker address.
func (p *Producer) CheckConnection(ctx context.Context) error {
	conn, err := kafka.DialContext(ctx, "tcp", p.brokers[0])
	if err != nil {
		return fmt.Errorf("failed to connect to Kafka: %w", err)
	}
	defer conn.Close()

	partitions, err := conn.ReadPartitions()
	if err != nil {
		return fmt.Errorf("failed to read partitions: %w", err)
	}

	log.Printf("Connected to Kafka, %d partitions visible", len(partitions))
	return nil
}
