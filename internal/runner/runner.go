// Package runner executes request definitions and hands the resulting exchanges
// to history storage and publishers.
package runner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samvad-hq/churl/internal/domain"
	"github.com/samvad-hq/churl/internal/extract"
	"github.com/samvad-hq/churl/internal/logger"
	"github.com/samvad-hq/churl/pkg/httpclient"
	"github.com/samvad-hq/churl/pkg/publishers"
	"github.com/samvad-hq/churl/pkg/requests"
)

// Result is the outcome of executing one definition.
type Result struct {
	Definition requests.Definition
	Response   *httpclient.Response
	Exchange   domain.Exchange
	Selected   []string
}

// Runner executes definitions through a Requester.
type Runner struct {
	client    httpclient.Requester
	store     ExchangeRecorder
	publisher EventPublisher
	source    string
	now       func() time.Time
}

// New wires a runner. store and publisher may be nil.
func New(client httpclient.Requester, store ExchangeRecorder, publisher EventPublisher, source string) *Runner {
	return &Runner{
		client:    client,
		store:     store,
		publisher: publisher,
		source:    source,
		now:       time.Now,
	}
}

// Execute runs a single definition. The returned error is non-nil only when the
// request could not be constructed; every network outcome is carried by the Response.
func (r *Runner) Execute(ctx context.Context, def requests.Definition) (Result, error) {
	if r == nil || r.client == nil {
		return Result{Definition: def}, errors.New("runner is not initialized")
	}

	start := r.now()
	resp, err := r.dispatch(ctx, def)
	if err != nil {
		return Result{Definition: def}, fmt.Errorf("request %s: %w", label(def), err)
	}
	elapsed := r.now().Sub(start)

	ex := domain.Exchange{
		ID:         uuid.NewString(),
		Name:       def.ID,
		Method:     strings.ToUpper(strings.TrimSpace(def.Method)),
		URI:        resp.URI(),
		StatusCode: resp.StatusCode(),
		Outcome:    resp.Outcome().String(),
		BodyBytes:  len(resp.Data()),
		ElapsedMs:  elapsed.Milliseconds(),
		RecordedAt: start.UTC(),
	}

	res := Result{Definition: def, Response: resp, Exchange: ex}
	if def.Select != "" {
		selected, err := extract.Select(resp.Body(), def.Select)
		if err != nil {
			logger.WarnObj("selector extraction failed", "extract_error", map[string]any{
				"request":  label(def),
				"selector": def.Select,
				"error":    err.Error(),
			})
		}
		res.Selected = selected
	}

	r.record(ex)
	r.publish(ctx, ex)

	logger.InfoObj("request executed", "exchange", ex)
	return res, nil
}

// RunAll executes definitions in order and joins construction errors.
// It stops early when ctx is cancelled.
func (r *Runner) RunAll(ctx context.Context, defs []requests.Definition) ([]Result, error) {
	if len(defs) == 0 {
		return nil, errors.New("no requests to run")
	}

	results := make([]Result, 0, len(defs))
	var errs []error
	for _, def := range defs {
		select {
		case <-ctx.Done():
			errs = append(errs, ctx.Err())
			return results, errors.Join(errs...)
		default:
		}

		res, err := r.Execute(ctx, def)
		if err != nil {
			errs = append(errs, err)
			logger.ErrorObj("request failed", "request_error", map[string]any{
				"request": label(def),
				"error":   err.Error(),
			})
			continue
		}
		results = append(results, res)
	}
	return results, errors.Join(errs...)
}

func (r *Runner) dispatch(ctx context.Context, def requests.Definition) (*httpclient.Response, error) {
	if def.HasForm() {
		return r.client.RequestForm(ctx, def.Method, def.URI, def.Headers, httpclient.Form(def.Form))
	}
	return r.client.Request(ctx, def.Method, def.URI, def.Headers, def.DataArgs()...)
}

func (r *Runner) record(ex domain.Exchange) {
	if r.store == nil {
		return
	}
	if err := r.store.Record(ex); err != nil {
		logger.WarnObj("history record failed", "storage_error", map[string]any{
			"exchange_id": ex.ID,
			"error":       err.Error(),
		})
	}
}

func (r *Runner) publish(ctx context.Context, ex domain.Exchange) {
	if r.publisher == nil {
		return
	}
	delivered, err := r.publisher.Publish(ctx, publishers.NewEvent(r.source, ex))
	if err != nil {
		logger.WarnObj("exchange publish failed", "publish_error", map[string]any{
			"exchange_id": ex.ID,
			"delivered":   delivered,
			"error":       err.Error(),
		})
	}
}

func label(def requests.Definition) string {
	if def.ID != "" {
		return def.ID
	}
	return def.Method + " " + def.URI
}
