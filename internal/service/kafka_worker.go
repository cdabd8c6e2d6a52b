package service

import (
	"flight_booker/internal/kafka"
	"flight_booker/internal/metrics"
	"flight_booker/internal/models"

	"github.com/sirupsen/logrus"
)

type KafkaJob struct {
	Event *kafka.BookingEvent
}

// EventPublisher - то, что умеет отправить событие (kafka.Producer).
type EventPublisher interface {
	SendBookingEvent(ev *kafka.BookingEvent) error
}

// StartKafkaWorker читает задачи из канала, пока его не закроют.
// Возвращаемый канал закрывается после обработки последней задачи.
func StartKafkaWorker(ch <-chan KafkaJob, producer EventPublisher, logger logrus.FieldLogger) <-chan struct{} {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for job := range ch {
			if job.Event == nil {
				continue
			}
			if err := producer.SendBookingEvent(job.Event); err != nil {
				metrics.IncKafkaError("producer", "send")
				logger.WithError(err).
					WithField("event_type", job.Event.Type).
					WithField("booking_id", job.Event.BookingID).
					Warn("kafka send error")
				continue
			}
			metrics.IncKafkaSent()
		}
	}()

	return done
}

// Notifier ставит события в очередь воркера, не блокируя UI.
// nil *Notifier - публикация выключена.
type Notifier struct {
	ch chan<- KafkaJob
}

func NewNotifier(ch chan<- KafkaJob) *Notifier {
	return &Notifier{ch: ch}
}

func (n *Notifier) BookingCreated(b models.Booking) {
	n.enqueue(kafka.NewBookingCreated(b))
}

func (n *Notifier) BookingDeleted(id int) {
	n.enqueue(kafka.NewBookingDeleted(id))
}

func (n *Notifier) enqueue(ev *kafka.BookingEvent) {
	if n == nil || n.ch == nil {
		return
	}
	select {
	case n.ch <- KafkaJob{Event: ev}:
	default:
		// очередь переполнена
		metrics.IncKafkaDropped()
	}
}
