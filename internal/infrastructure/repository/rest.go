package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"

	"expopanel/internal/application/entity"
	"expopanel/internal/infrastructure/gateway"
	"expopanel/internal/shared/errors"
	"expopanel/internal/shared/logger"
	"expopanel/internal/shared/query"
)

// Transport is the subset of gateway.Client the repositories use.
type Transport interface {
	Get(ctx context.Context, path string, query url.Values, out any) error
	Post(ctx context.Context, path string, body any, out any) error
	Delete(ctx context.Context, path string, out any) error
	DeleteWithFallback(ctx context.Context, path, fallbackPath string, id int64, out any) error
	PostMultipart(ctx context.Context, path string, fields []gateway.Field, file *gateway.File, out any) error
}

// Definition describes how one entity maps onto the REST conventions.
type Definition[T any] struct {
	Name     string
	List     string
	Mutation string

	ID      func(T) int64
	Payload func(T) map[string]any

	// FileField is the multipart field for an attached file. Entities
	// without one reject uploads.
	FileField string
	// MultipartPayload replaces Payload when a file is attached.
	MultipartPayload func(T) map[string]any

	// DeletePath builds the delete route; the default is Mutation+id.
	DeletePath func(base string, id int64) string
	// DeleteFallback retries a rejected DELETE as a flagged POST.
	DeleteFallback bool
}

// RestRepository implements entity.Repository over the gateway.
type RestRepository[T any] struct {
	client Transport
	def    Definition[T]
	logger logger.Interface
}

func NewRestRepository[T any](client Transport, def Definition[T], log logger.Interface) *RestRepository[T] {
	return &RestRepository[T]{
		client: client,
		def:    def,
		logger: log.Named("repository." + def.Name),
	}
}

func (r *RestRepository[T]) List(ctx context.Context, q query.ListQuery) ([]T, int, error) {
	var raw json.RawMessage
	if err := r.client.Get(ctx, r.def.List, q.Values(), &raw); err != nil {
		return nil, 0, fmt.Errorf("failed to list %s: %w", r.def.Name, err)
	}

	list, err := gateway.DecodeList[T](raw)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to decode %s list: %w", r.def.Name, err)
	}
	return list.Items, list.Total, nil
}

func (r *RestRepository[T]) Create(ctx context.Context, rec T, file *entity.Upload) (T, error) {
	return r.save(ctx, rec, file)
}

// Update posts to the same endpoint as Create; the id in the body marks
// it as an update.
func (r *RestRepository[T]) Update(ctx context.Context, rec T, file *entity.Upload) (T, error) {
	if r.def.ID(rec) == 0 {
		var zero T
		return zero, errors.NewValidationError(fmt.Sprintf("missing _id to update %s", r.def.Name))
	}
	return r.save(ctx, rec, file)
}

func (r *RestRepository[T]) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return errors.NewValidationError(fmt.Sprintf("invalid %s id %d", r.def.Name, id))
	}

	path := r.def.Mutation + strconv.FormatInt(id, 10)
	if r.def.DeletePath != nil {
		path = r.def.DeletePath(r.def.Mutation, id)
	}

	var err error
	if r.def.DeleteFallback {
		err = r.client.DeleteWithFallback(ctx, path, r.def.Mutation, id, nil)
	} else {
		err = r.client.Delete(ctx, path, nil)
	}
	if err != nil {
		return fmt.Errorf("failed to delete %s %d: %w", r.def.Name, id, err)
	}
	return nil
}

// save posts JSON, or multipart when a file accompanies the record. The
// saved record is read from the response and falls back to rec.
func (r *RestRepository[T]) save(ctx context.Context, rec T, file *entity.Upload) (T, error) {
	var raw json.RawMessage

	if file != nil {
		if r.def.FileField == "" {
			var zero T
			return zero, errors.NewValidationError(fmt.Sprintf("%s does not accept files", r.def.Name))
		}
		payload := r.def.Payload
		if r.def.MultipartPayload != nil {
			payload = r.def.MultipartPayload
		}
		upload := &gateway.File{
			Field:    r.def.FileField,
			Filename: file.Filename,
			Content:  bytes.NewReader(file.Content),
		}
		if err := r.client.PostMultipart(ctx, r.def.Mutation, formFields(payload(rec)), upload, &raw); err != nil {
			var zero T
			return zero, fmt.Errorf("failed to save %s: %w", r.def.Name, err)
		}
	} else {
		if err := r.client.Post(ctx, r.def.Mutation, r.def.Payload(rec), &raw); err != nil {
			var zero T
			return zero, fmt.Errorf("failed to save %s: %w", r.def.Name, err)
		}
	}

	saved := gateway.DecodeRecord(raw, rec)
	r.logger.Debugw("record saved", "id", r.def.ID(saved))
	return saved, nil
}

// formFields flattens a payload into multipart fields in key order.
func formFields(payload map[string]any) []gateway.Field {
	keys := make([]string, 0, len(payload))
	for k, v := range payload {
		if v != nil {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	fields := make([]gateway.Field, 0, len(keys))
	for _, k := range keys {
		fields = append(fields, gateway.Field{Name: k, Value: fmt.Sprint(payload[k])})
	}
	return fields
}

// FetchAll reads a list endpoint that returns every entry at once.
func FetchAll[T any](ctx context.Context, client Transport, path string) ([]T, error) {
	var raw json.RawMessage
	if err := client.Get(ctx, path, nil, &raw); err != nil {
		return nil, err
	}
	list, err := gateway.DecodeList[T](raw)
	if err != nil {
		return nil, err
	}
	return list.Items, nil
}
