package rowstore

import (
	"context"

	"github.com/celerix-dev/auditoria/pkg/schema"
)

// Observer receives the outcome of every operation.
type Observer interface {
	ObserveStoreOp(op, status string)
}

// Instrument wraps s so that each operation is reported to obs.
func Instrument(s Store, obs Observer) Store {
	return &instrumented{next: s, obs: obs}
}

type instrumented struct {
	next Store
	obs  Observer
}

func (i *instrumented) Mode() string { return i.next.Mode() }

func (i *instrumented) List(ctx context.Context, location string) Result[[]schema.AuditRow] {
	res := i.next.List(ctx, location)
	i.obs.ObserveStoreOp("list", res.Status.String())
	return res
}

func (i *instrumented) Save(ctx context.Context, location string, row schema.AuditRow) Result[schema.AuditRow] {
	res := i.next.Save(ctx, location, row)
	i.obs.ObserveStoreOp("save", res.Status.String())
	return res
}

func (i *instrumented) Replace(ctx context.Context, location string, ref Ref, row schema.AuditRow) Result[schema.AuditRow] {
	res := i.next.Replace(ctx, location, ref, row)
	i.obs.ObserveStoreOp("replace", res.Status.String())
	return res
}

func (i *instrumented) Delete(ctx context.Context, location string, ref Ref) Result[struct{}] {
	res := i.next.Delete(ctx, location, ref)
	i.obs.ObserveStoreOp("delete", res.Status.String())
	return res
}

func (i *instrumented) Clear(ctx context.Context, location string) Result[struct{}] {
	res := i.next.Clear(ctx, location)
	i.obs.ObserveStoreOp("clear", res.Status.String())
	return res
}

func (i *instrumented) Prepend(ctx context.Context, location string, rows []schema.AuditRow) Result[int] {
	res := i.next.Prepend(ctx, location, rows)
	i.obs.ObserveStoreOp("prepend", res.Status.String())
	return res
}
