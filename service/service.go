package service

import (
	"context"
	"log"
	"sync"
	"time"

	"report-moderation/config"
	"report-moderation/database"
	"report-moderation/handlers"
	"report-moderation/rabbitmq"
	"report-moderation/storage"
	"report-moderation/websocket"
)

// Service owns the store, the attachment storage, the WebSocket hub and the
// broadcast loop that keeps dashboards in sync.
type Service struct {
	config    *config.Config
	db        *database.Database
	store     *storage.Store
	hub       *websocket.Hub
	handlers  *handlers.Handlers
	publisher *rabbitmq.Publisher

	// Last observed write state of the reports table
	lastMarker database.Marker
	mu         sync.Mutex

	// Control channels
	notifyChan chan struct{}
	stopChan   chan struct{}
	wg         sync.WaitGroup
}

// NewService creates a new report moderation service
func NewService(cfg *config.Config) (*Service, error) {
	db, err := database.NewDatabase(cfg)
	if err != nil {
		return nil, err
	}

	store, err := storage.NewStore(cfg.UploadsDir)
	if err != nil {
		return nil, err
	}

	var publisher *rabbitmq.Publisher
	if cfg.AMQPURL != "" {
		publisher, err = rabbitmq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			// Events are best-effort; the service runs without the broker.
			log.Printf("Warning: RabbitMQ publisher unavailable: %v", err)
			publisher = nil
		}
	}

	hub := websocket.NewHub()

	svc := &Service{
		config:     cfg,
		db:         db,
		store:      store,
		hub:        hub,
		publisher:  publisher,
		notifyChan: make(chan struct{}, 1),
		stopChan:   make(chan struct{}),
	}

	svc.handlers = handlers.NewHandlers(db, store, hub, publisher, svc.NotifyChange, cfg.DefaultOperator)

	return svc, nil
}

// Start starts the service
func (s *Service) Start() error {
	log.Printf("Starting report moderation service...")

	if err := s.db.InitSchema(); err != nil {
		return err
	}

	// Start the WebSocket hub
	go s.hub.Run()

	// Seed the change marker so startup does not trigger an empty broadcast
	marker, err := s.db.ChangeMarker(context.Background())
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.lastMarker = marker
	s.mu.Unlock()

	// Start the broadcast loop
	s.wg.Add(1)
	go s.broadcastLoop()

	log.Printf("Report moderation service started successfully")
	return nil
}

// Stop stops the service gracefully
func (s *Service) Stop() error {
	log.Printf("Stopping report moderation service...")

	close(s.stopChan)
	s.wg.Wait()

	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			log.Printf("Error closing publisher: %v", err)
		}
	}

	if err := s.db.Close(); err != nil {
		log.Printf("Error closing database: %v", err)
	}

	log.Printf("Report moderation service stopped")
	return nil
}

// GetHandlers returns the HTTP handlers
func (s *Service) GetHandlers() *handlers.Handlers {
	return s.handlers
}

// Store returns the attachment store, used for static serving
func (s *Service) Store() *storage.Store {
	return s.store
}

// NotifyChange pokes the broadcast loop after a store write. Non-blocking;
// coalesces with an already pending notification.
func (s *Service) NotifyChange() {
	select {
	case s.notifyChan <- struct{}{}:
	default:
	}
}

// broadcastLoop pushes a full snapshot to all dashboards whenever the
// reports table changes. Writes through this service wake it immediately;
// the ticker catches writes from anywhere else.
func (s *Service) broadcastLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.BroadcastInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-s.notifyChan:
			if err := s.broadcastIfChanged(); err != nil {
				log.Printf("Error broadcasting reports: %v", err)
			}
		case <-ticker.C:
			if err := s.broadcastIfChanged(); err != nil {
				log.Printf("Error broadcasting reports: %v", err)
			}
		}
	}
}

func (s *Service) broadcastIfChanged() error {
	ctx := context.Background()

	marker, err := s.db.ChangeMarker(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	changed := marker != s.lastMarker
	s.mu.Unlock()

	if !changed {
		return nil
	}

	reports, err := s.db.GetAllReports(ctx)
	if err != nil {
		return err
	}

	s.hub.BroadcastSnapshot(reports)

	s.mu.Lock()
	s.lastMarker = marker
	s.mu.Unlock()

	return nil
}
