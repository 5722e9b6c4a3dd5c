// Package tables stores tasks in Azure Table Storage. All tasks of a board
// share one partition; the row key is the task id.
package tables

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"
	"github.com/google/uuid"

	"github.com/tgienger/kanban/internal/models"
	"github.com/tgienger/kanban/internal/store"
)

const (
	EdmInt32    = "Edm.Int32"
	EdmDateTime = "Edm.DateTime"

	// edmTimeLayout keeps the seven fractional digits the service accepts.
	edmTimeLayout = "2006-01-02T15:04:05.0000000Z"
)

// entity represents base table entity keys.
type entity struct {
	PartitionKey string `json:"PartitionKey"`
	RowKey       string `json:"RowKey"`
}

type taskEntity struct {
	entity
	Title         string `json:"Title"`
	Status        string `json:"Status"`
	Position      int32  `json:"Position"`
	PositionType  string `json:"Position@odata.type"`
	CreatedAt     string `json:"CreatedAt"`
	CreatedAtType string `json:"CreatedAt@odata.type"`
	UpdatedAt     string `json:"UpdatedAt"`
	UpdatedAtType string `json:"UpdatedAt@odata.type"`
}

type statusUpdate struct {
	entity
	Status        string `json:"Status"`
	UpdatedAt     string `json:"UpdatedAt"`
	UpdatedAtType string `json:"UpdatedAt@odata.type"`
}

// table is the part of aztables.Client the store calls.
type table interface {
	AddEntity(ctx context.Context, entity []byte, options *aztables.AddEntityOptions) (aztables.AddEntityResponse, error)
	UpdateEntity(ctx context.Context, entity []byte, options *aztables.UpdateEntityOptions) (aztables.UpdateEntityResponse, error)
	DeleteEntity(ctx context.Context, partitionKey string, rowKey string, options *aztables.DeleteEntityOptions) (aztables.DeleteEntityResponse, error)
	NewListEntitiesPager(options *aztables.ListEntitiesOptions) *runtime.Pager[aztables.ListEntitiesResponse]
}

// Store keeps tasks in one partition of an Azure table
type Store struct {
	table     table
	partition string
	now       func() time.Time
}

// Ensure Store implements store.Client interface
var _ store.Client = (*Store)(nil)

// New connects to tableName using connStr and creates the table if needed.
func New(ctx context.Context, connStr, tableName, partition string) (*Store, error) {
	opts := aztables.ClientOptions{
		ClientOptions: azcore.ClientOptions{
			// one attempt per call; failures surface to the caller as-is
			Retry: policy.RetryOptions{MaxRetries: -1},
		},
	}
	svc, err := aztables.NewServiceClientFromConnectionString(connStr, &opts)
	if err != nil {
		return nil, err
	}
	if _, err := svc.CreateTable(ctx, tableName, nil); err != nil && !hasStatus(err, http.StatusConflict) {
		return nil, store.Unavailable("create table", err)
	}
	return newStore(svc.NewClient(tableName), partition), nil
}

func newStore(t table, partition string) *Store {
	if partition == "" {
		partition = "board"
	}
	return &Store{
		table:     t,
		partition: partition,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Close is a no-op; the SDK clients hold no connections of their own.
func (s *Store) Close() error {
	return nil
}

// ListTasks loads the partition and orders it by position. The service
// only sorts by keys, so ordering happens here.
func (s *Store) ListTasks(ctx context.Context) ([]models.Task, error) {
	filter := "PartitionKey eq '" + strings.ReplaceAll(s.partition, "'", "''") + "'"
	pager := s.table.NewListEntitiesPager(&aztables.ListEntitiesOptions{Filter: &filter})
	tasks := []models.Task{}
	for pager.More() {
		resp, err := pager.NextPage(ctx)
		if err != nil {
			return nil, store.Unavailable("list tasks", err)
		}
		for _, raw := range resp.Entities {
			t, err := decodeTask(raw)
			if err != nil {
				return nil, store.Unavailable("list tasks", err)
			}
			tasks = append(tasks, t)
		}
	}
	sortTasks(tasks)
	return tasks, nil
}

// InsertTask adds a new entity under a generated row key
func (s *Store) InsertTask(ctx context.Context, task store.NewTask) (models.Task, error) {
	now := s.now()
	ent := taskEntity{
		entity:        entity{PartitionKey: s.partition, RowKey: uuid.New().String()},
		Title:         task.Title,
		Status:        string(task.Status),
		Position:      int32(task.Position),
		PositionType:  EdmInt32,
		CreatedAt:     edmTime(now),
		CreatedAtType: EdmDateTime,
		UpdatedAt:     edmTime(now),
		UpdatedAtType: EdmDateTime,
	}
	payload, err := json.Marshal(ent)
	if err != nil {
		return models.Task{}, err
	}
	if _, err := s.table.AddEntity(ctx, payload, nil); err != nil {
		return models.Task{}, store.Unavailable("insert task", err)
	}
	return decodeTask(payload)
}

// UpdateTaskStatus merges the new status into an existing entity
func (s *Store) UpdateTaskStatus(ctx context.Context, id string, status models.Status, updatedAt time.Time) error {
	payload, err := json.Marshal(statusUpdate{
		entity:        entity{PartitionKey: s.partition, RowKey: id},
		Status:        string(status),
		UpdatedAt:     edmTime(updatedAt),
		UpdatedAtType: EdmDateTime,
	})
	if err != nil {
		return err
	}
	et := azcore.ETagAny
	_, err = s.table.UpdateEntity(ctx, payload, &aztables.UpdateEntityOptions{IfMatch: &et, UpdateMode: aztables.UpdateModeMerge})
	return mapError(err, id, "update task")
}

// DeleteTask removes an entity by row key
func (s *Store) DeleteTask(ctx context.Context, id string) error {
	_, err := s.table.DeleteEntity(ctx, s.partition, id, nil)
	return mapError(err, id, "delete task")
}

func decodeTask(data []byte) (models.Task, error) {
	var ent taskEntity
	if err := json.Unmarshal(data, &ent); err != nil {
		return models.Task{}, err
	}
	status, err := models.ParseStatus(ent.Status)
	if err != nil {
		return models.Task{}, fmt.Errorf("task %s: %w", ent.RowKey, err)
	}
	created, err := parseEdmTime(ent.CreatedAt)
	if err != nil {
		return models.Task{}, fmt.Errorf("task %s created_at: %w", ent.RowKey, err)
	}
	updated, err := parseEdmTime(ent.UpdatedAt)
	if err != nil {
		return models.Task{}, fmt.Errorf("task %s updated_at: %w", ent.RowKey, err)
	}
	return models.Task{
		ID:        ent.RowKey,
		Title:     ent.Title,
		Status:    status,
		Position:  int(ent.Position),
		CreatedAt: created,
		UpdatedAt: updated,
	}, nil
}

func sortTasks(tasks []models.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		if a.Position != b.Position {
			return a.Position < b.Position
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}

func edmTime(t time.Time) string {
	return t.UTC().Format(edmTimeLayout)
}

func parseEdmTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339Nano, s)
}

func hasStatus(err error, code int) bool {
	var respErr *azcore.ResponseError
	return errors.As(err, &respErr) && respErr.StatusCode == code
}

func mapError(err error, id, op string) error {
	if err == nil {
		return nil
	}
	if hasStatus(err, http.StatusNotFound) {
		return store.NotFound(id)
	}
	return store.Unavailable(op, err)
}
