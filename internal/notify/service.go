package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/smtp"
	"time"

	"blinno/internal/logger"
	"blinno/internal/metrics"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	queueKey  = "notifications"
	failedKey = "notifications:failed"
	maxTries  = 3
)

// Notifier is the fire-and-forget notification boundary. Implementations
// must never let a delivery failure propagate into financial state changes.
type Notifier interface {
	PaymentCompleted(ctx context.Context, email, name string, amountCents int64, currency, orderID string) error
	PaymentFailed(ctx context.Context, email, name string, amountCents int64, currency, orderID string) error
	EarningsAvailable(ctx context.Context, email, name string, amountCents int64, currency, orderID string) error
	PayoutCompleted(ctx context.Context, email, name string, amountCents int64, currency string) error
	PayoutFailed(ctx context.Context, email, name string, amountCents int64, currency, reason string) error
}

type Job struct {
	ID      string    `json:"id"`
	To      string    `json:"to"`
	Name    string    `json:"name"`
	Type    string    `json:"type"`
	Subject string    `json:"subject"`
	Body    string    `json:"body"`
	Tries   int       `json:"tries"`
	Created time.Time `json:"created"`
}

type Service struct {
	redis    *redis.Client
	from     string
	fromName string
	smtpHost string
	smtpPort string
	smtpUser string
	smtpPass string
}

func New(fromEmail, fromName, smtpHost, smtpPort, smtpUser, smtpPass, redisAddr string) *Service {
	return &Service{
		redis: redis.NewClient(&redis.Options{
			Addr: redisAddr,
		}),
		from:     fromEmail,
		fromName: fromName,
		smtpHost: smtpHost,
		smtpPort: smtpPort,
		smtpUser: smtpUser,
		smtpPass: smtpPass,
	}
}

// Send queues an arbitrary email. Domain notifications go through the typed
// helpers in templates.go.
func (s *Service) Send(ctx context.Context, to, name, subject, body string) error {
	return s.enqueue(ctx, Job{
		To:      to,
		Name:    name,
		Type:    "generic",
		Subject: subject,
		Body:    body,
	})
}

func (s *Service) enqueue(ctx context.Context, job Job) error {
	job.ID = uuid.NewString()
	job.Created = time.Now()

	data, err := json.Marshal(job)
	if err != nil {
		logger.Errorf("Failed to marshal notification job: %v", err)
		return err
	}

	if err := s.redis.LPush(ctx, queueKey, data).Err(); err != nil {
		logger.Errorf("Failed to queue notification to %s: %v", job.To, err)
		return err
	}

	logger.Infof("Notification queued: %s to %s", job.Type, job.To)
	return nil
}

// Start runs the delivery worker until the context is cancelled.
func (s *Service) Start(ctx context.Context) {
	logger.Info("Notification service started")

	for {
		select {
		case <-ctx.Done():
			logger.Info("Notification service stopped")
			return
		default:
			s.processNext(ctx)
		}
	}
}

func (s *Service) processNext(ctx context.Context) {
	result, err := s.redis.BRPop(ctx, 2*time.Second, queueKey).Result()
	if err != nil {
		return
	}

	var job Job
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		logger.Errorf("Bad notification data: %v", err)
		return
	}

	job.Tries++
	if err := s.sendNow(job); err != nil {
		logger.Errorf("Failed to send notification to %s: %v", job.To, err)
		metrics.RecordNotification(job.Type, "error")

		if job.Tries < maxTries {
			time.Sleep(5 * time.Second)
			data, _ := json.Marshal(job)
			s.redis.LPush(context.Background(), queueKey, data)
		} else {
			logger.Errorf("Notification to %s failed after %d attempts", job.To, maxTries)
			s.saveFailed(job, err)
		}
		return
	}

	metrics.RecordNotification(job.Type, "sent")
}

func (s *Service) sendNow(job Job) error {
	message := fmt.Sprintf("From: %s <%s>\r\n", s.fromName, s.from)
	message += fmt.Sprintf("To: %s\r\n", job.To)
	message += fmt.Sprintf("Subject: %s\r\n", job.Subject)
	message += "\r\n" + job.Body

	var auth smtp.Auth
	if s.smtpUser != "" && s.smtpPass != "" {
		auth = smtp.PlainAuth("", s.smtpUser, s.smtpPass, s.smtpHost)
	}

	addr := s.smtpHost + ":" + s.smtpPort
	return smtp.SendMail(addr, auth, s.from, []string{job.To}, []byte(message))
}

func (s *Service) saveFailed(job Job, err error) {
	failed := map[string]interface{}{
		"job":   job,
		"error": err.Error(),
		"time":  time.Now(),
	}
	data, _ := json.Marshal(failed)
	s.redis.LPush(context.Background(), failedKey, data)
}

func (s *Service) QueueLength(ctx context.Context) int64 {
	length, _ := s.redis.LLen(ctx, queueKey).Result()
	return length
}

func (s *Service) Close() error {
	return s.redis.Close()
}
