// Package audit persists what each run sent to the catalog API.
package audit

import (
	"context"
	"errors"

	"catalog_sync/internal/ports"
)

const (
	StatusDone   = "done"
	StatusFailed = "failed"
)

type Noop struct{}

func (Noop) RecordBatch(context.Context, ports.BatchEntry) error { return nil }
func (Noop) RecordRun(context.Context, ports.RunEntry) error     { return nil }

// Multi fans entries out to every recorder and joins their errors.
type Multi []ports.Recorder

func (m Multi) RecordBatch(ctx context.Context, e ports.BatchEntry) error {
	var errs []error
	for _, r := range m {
		if err := r.RecordBatch(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) RecordRun(ctx context.Context, e ports.RunEntry) error {
	var errs []error
	for _, r := range m {
		if err := r.RecordRun(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Combine returns a recorder for rs, skipping nils.
func Combine(rs ...ports.Recorder) ports.Recorder {
	out := make(Multi, 0, len(rs))
	for _, r := range rs {
		if r != nil {
			out = append(out, r)
		}
	}
	switch len(out) {
	case 0:
		return Noop{}
	case 1:
		return out[0]
	}
	return out
}
