package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"credits-service/internal/consumers"
	"credits-service/internal/tasks"

	"github.com/hibiken/asynq"
	log "github.com/sirupsen/logrus"
)

type Worker struct {
	Processor *consumers.PaymentProcessor
}

func NewWorker(processor *consumers.PaymentProcessor) *Worker {
	return &Worker{
		Processor: processor,
	}
}

func (w *Worker) HandleRecursoCancel(ctx context.Context, t *asynq.Task) error {
	var p tasks.RecursoCancelPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("json.Unmarshal failed: %v: %w", err, asynq.SkipRetry)
	}
	w.Processor.ProcessRecursoCancel(p)
	return nil
}

func (w *Worker) HandlePaymentNotify(ctx context.Context, t *asynq.Task) error {
	var p tasks.PaymentNotifyPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("json.Unmarshal failed: %v: %w", err, asynq.SkipRetry)
	}
	w.Processor.ProcessNotify(p)
	return nil
}

func StartWorker(redisOpt asynq.RedisClientOpt, processor *consumers.PaymentProcessor) {
	srv := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
		},
	)

	worker := NewWorker(processor)
	mux := asynq.NewServeMux()

	mux.HandleFunc(tasks.TypeRecursoCancel, worker.HandleRecursoCancel)
	mux.HandleFunc(tasks.TypePaymentNotify, worker.HandlePaymentNotify)

	if err := srv.Run(mux); err != nil {
		log.Fatalf("could not run server: %v", err)
	}
}
