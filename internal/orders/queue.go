package orders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/yourusername/bestbags/internal/config"
)

const taskTypeOrder = "order:process"

// Manager は注文処理ジョブの投入と状態管理を担います。
type Manager struct {
	cfg    *config.Config
	client *asynq.Client
	server *asynq.Server
	mux    *asynq.ServeMux
	status *StatusStore
	store  *Store
	logger *log.Logger
}

// TaskPayload は注文処理ジョブのペイロードです。
type TaskPayload struct {
	OrderID string `json:"orderId"`
}

// NewManager は Manager を初期化します。
func NewManager(cfg *config.Config, store *Store, status *StatusStore, logger *log.Logger) (*Manager, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if store == nil {
		return nil, errors.New("store is nil")
	}
	if status == nil {
		return nil, errors.New("status is nil")
	}
	opt, err := asynq.ParseRedisURI(cfg.QueueRedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := asynq.NewClient(opt)
	server := asynq.NewServer(
		opt,
		asynq.Config{
			Concurrency: 4,
			Queues: map[string]int{
				"orders": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	manager := &Manager{
		cfg:    cfg,
		client: client,
		server: server,
		mux:    mux,
		status: status,
		store:  store,
		logger: logger,
	}
	mux.HandleFunc(taskTypeOrder, manager.handleOrderTask)
	return manager, nil
}

// StartWorkers は Asynq サーバーをバックグラウンドで起動します。
func (m *Manager) StartWorkers() {
	go func() {
		if err := m.server.Run(m.mux); err != nil && err != asynq.ErrServerClosed {
			if m.logger != nil {
				m.logger.Printf("asynq server stopped with error: %v", err)
			} else {
				log.Printf("asynq server stopped with error: %v", err)
			}
		}
	}()
}

// Shutdown はサーバーとクライアントを閉じます。
func (m *Manager) Shutdown(ctx context.Context) error {
	m.server.Shutdown()
	m.client.Close()
	return nil
}

// Enqueue は注文処理ジョブをキューに投入します。
func (m *Manager) Enqueue(ctx context.Context, orderID string) (string, error) {
	if orderID == "" {
		return "", fmt.Errorf("orderID is required")
	}

	record := &Record{
		OrderID: orderID,
		Status:  StatusPlaced,
		Progress: ProgressInfo{
			Percent: 0,
			Stage:   "placed",
		},
	}
	if err := m.status.Upsert(ctx, record); err != nil {
		return "", err
	}

	body, err := json.Marshal(&TaskPayload{OrderID: orderID})
	if err != nil {
		return "", err
	}

	task := asynq.NewTask(taskTypeOrder, body, asynq.Queue("orders"))
	info, err := m.client.EnqueueContext(ctx, task, asynq.MaxRetry(1))
	if err != nil {
		return "", err
	}
	return info.ID, nil
}

// GetRecord は注文処理の状態を取得します。
func (m *Manager) GetRecord(ctx context.Context, orderID string) (*Record, error) {
	return m.status.Get(ctx, orderID)
}

func (m *Manager) handleOrderTask(ctx context.Context, task *asynq.Task) error {
	var payload TaskPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return err
	}
	if payload.OrderID == "" {
		return fmt.Errorf("missing orderId in payload")
	}

	orderID, err := uuid.Parse(payload.OrderID)
	if err != nil {
		return m.failOrder(ctx, payload.OrderID, "INVALID_ORDER_ID", err.Error())
	}

	if err := m.status.Upsert(ctx, &Record{
		OrderID: payload.OrderID,
		Status:  StatusProcessing,
		Progress: ProgressInfo{
			Percent: 50,
			Stage:   "processing",
		},
	}); err != nil {
		return err
	}
	if _, err := m.store.UpdateStatus(ctx, orderID, StatusProcessing); err != nil {
		return m.failOrder(ctx, payload.OrderID, "INTERNAL_ERROR", err.Error())
	}

	// 決済や在庫引当をここに差し込む。現状は確定のみ。
	updated, err := m.store.UpdateStatus(ctx, orderID, StatusConfirmed)
	if err != nil {
		return m.failOrder(ctx, payload.OrderID, "INTERNAL_ERROR", err.Error())
	}
	if !updated {
		return m.failOrder(ctx, payload.OrderID, "ORDER_NOT_FOUND", "order does not exist")
	}
	return m.status.MarkConfirmed(ctx, payload.OrderID)
}

func (m *Manager) failOrder(ctx context.Context, orderID, code, message string) error {
	if err := m.status.MarkFailed(ctx, orderID, &ErrorInfo{
		Code:    code,
		Message: message,
	}); err != nil {
		return err
	}
	return nil
}
