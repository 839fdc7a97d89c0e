package storage

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"
)

const boardPartition = "board"

// TableKV stores each board entry as one Azure Table entity in the "board"
// partition, with the key as row key.
type TableKV struct {
	table *aztables.Client
}

type boardEntity struct {
	aztables.Entity
	Value string `json:"Value"`
}

// NewTableKV connects to tableName using a storage connection string.
func NewTableKV(connStr, tableName string) (*TableKV, error) {
	opts := aztables.ClientOptions{
		ClientOptions: azcore.ClientOptions{
			Retry: policy.RetryOptions{
				MaxRetries:    3,
				TryTimeout:    time.Minute * 3,
				RetryDelay:    time.Second * 1,
				MaxRetryDelay: time.Second * 15,
				StatusCodes:   []int{408, 429, 500, 502, 503, 504},
			},
		},
	}
	svc, err := aztables.NewServiceClientFromConnectionString(connStr, &opts)
	if err != nil {
		return nil, err
	}
	return &TableKV{table: svc.NewClient(tableName)}, nil
}

// EnsureTable creates the table if it does not exist yet.
func (t *TableKV) EnsureTable(ctx context.Context) error {
	_, err := t.table.CreateTable(ctx, nil)
	if err == nil {
		return nil
	}
	var respErr *azcore.ResponseError
	if errors.As(err, &respErr) && respErr.ErrorCode == string(aztables.TableAlreadyExists) {
		return nil
	}
	return err
}

func (t *TableKV) Get(ctx context.Context, key string) ([]byte, error) {
	resp, err := t.table.GetEntity(ctx, boardPartition, key, nil)
	if err != nil {
		var respErr *azcore.ResponseError
		if errors.As(err, &respErr) && respErr.StatusCode == http.StatusNotFound {
			return nil, nil
		}
		return nil, err
	}
	return decodeBoardEntity(resp.Value)
}

func decodeBoardEntity(data []byte) ([]byte, error) {
	var ent boardEntity
	if err := json.Unmarshal(data, &ent); err != nil {
		return nil, err
	}
	return []byte(ent.Value), nil
}

func (t *TableKV) Put(ctx context.Context, key string, value []byte) error {
	data, err := encodeBoardEntity(key, value)
	if err != nil {
		return err
	}
	_, err = t.table.UpsertEntity(ctx, data, &aztables.UpsertEntityOptions{UpdateMode: aztables.UpdateModeReplace})
	return err
}

func encodeBoardEntity(key string, value []byte) ([]byte, error) {
	return json.Marshal(boardEntity{
		Entity: aztables.Entity{PartitionKey: boardPartition, RowKey: key},
		Value:  string(value),
	})
}
