package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/arrajeevchandar/messhall/internal/config"
	"github.com/arrajeevchandar/messhall/internal/mailer"
	"github.com/arrajeevchandar/messhall/internal/queue"
	"github.com/arrajeevchandar/messhall/internal/store"
)

// Worker consumes queued email jobs and delivers them through SES. Login
// codes go out from here so a slow SES call never holds up an API request.
func main() {
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("shutdown signal received")
		cancel()
	}()

	redisClient := store.NewRedis(cfg.RedisAddr)

	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		q = queue.NewInMemory(64)
	} else {
		q = queue.NewRedisQueue(redisClient.Client, "messhall:emails")
	}

	m, err := mailer.New(ctx, cfg.AWSRegion, cfg.SESEmail)
	if err != nil {
		log.Fatalf("mailer init failed: %v", err)
	}

	jobs, err := q.Consume(ctx)
	if err != nil {
		log.Fatalf("queue consume init failed: %v", err)
	}

	log.Println("worker started, waiting for email jobs...")
	for job := range jobs {
		sendCtx, sendCancel := context.WithTimeout(ctx, 15*time.Second)
		if err := m.Send(sendCtx, job.To, job.Subject, job.Body); err != nil {
			log.Printf("send to %s failed: %v", job.To, err)
		} else {
			log.Printf("sent %q to %s", job.Subject, job.To)
		}
		sendCancel()
	}

	log.Println("worker stopped")
}
