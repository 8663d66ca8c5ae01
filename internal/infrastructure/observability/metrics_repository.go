package observability

import (
	"context"
	"time"

	"pokedex-backend/internal/domain"
	"pokedex-backend/internal/repository"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// instrumentedRepository is a decorator that wraps every store call in a span
// and records a db_operations_total sample for it.
type instrumentedRepository struct {
	inner     repository.PokemonRepository
	collector *Collector
	tracer    trace.Tracer
}

// InstrumentRepository decorates repo with tracing and metrics. collector may be nil.
func InstrumentRepository(repo repository.PokemonRepository, collector *Collector) repository.PokemonRepository {
	return &instrumentedRepository{
		inner:     repo,
		collector: collector,
		tracer:    otel.Tracer(instrumentationName),
	}
}

// observe starts a span for operation and returns the function that ends it.
func (r *instrumentedRepository) observe(ctx context.Context, operation string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := r.tracer.Start(ctx, "repository."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(append(attrs, attribute.String("db.system", "dynamodb"))...),
	)
	return ctx, func(err error) {
		status := "success"
		if err != nil {
			status = "error"
			if r.inner.Classify(err) == repository.KindConflict {
				status = "conflict"
			}
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		r.collector.RecordDBOperation(operation, status, time.Since(start))
	}
}

func (r *instrumentedRepository) Create(ctx context.Context, pokemon domain.Pokemon) (*domain.Pokemon, error) {
	ctx, done := r.observe(ctx, "Create", attribute.String("pokemon.name", pokemon.Name), attribute.Int("pokemon.no", pokemon.No))
	created, err := r.inner.Create(ctx, pokemon)
	done(err)
	return created, err
}

func (r *instrumentedRepository) CreateMany(ctx context.Context, pokemons []domain.Pokemon) ([]domain.Pokemon, error) {
	ctx, done := r.observe(ctx, "CreateMany", attribute.Int("batch.size", len(pokemons)))
	created, err := r.inner.CreateMany(ctx, pokemons)
	done(err)
	return created, err
}

func (r *instrumentedRepository) List(ctx context.Context, limit, offset int) ([]domain.Pokemon, error) {
	ctx, done := r.observe(ctx, "List", attribute.Int("limit", limit), attribute.Int("offset", offset))
	page, err := r.inner.List(ctx, limit, offset)
	done(err)
	return page, err
}

func (r *instrumentedRepository) FindByID(ctx context.Context, id string) (*domain.Pokemon, error) {
	ctx, done := r.observe(ctx, "FindByID", attribute.String("pokemon.id", id))
	p, err := r.inner.FindByID(ctx, id)
	done(err)
	return p, err
}

func (r *instrumentedRepository) FindByNo(ctx context.Context, no int) (*domain.Pokemon, error) {
	ctx, done := r.observe(ctx, "FindByNo", attribute.Int("pokemon.no", no))
	p, err := r.inner.FindByNo(ctx, no)
	done(err)
	return p, err
}

func (r *instrumentedRepository) FindByName(ctx context.Context, name string) (*domain.Pokemon, error) {
	ctx, done := r.observe(ctx, "FindByName", attribute.String("pokemon.name", name))
	p, err := r.inner.FindByName(ctx, name)
	done(err)
	return p, err
}

func (r *instrumentedRepository) Update(ctx context.Context, current, updated domain.Pokemon) error {
	ctx, done := r.observe(ctx, "Update", attribute.String("pokemon.id", current.ID))
	err := r.inner.Update(ctx, current, updated)
	done(err)
	return err
}

func (r *instrumentedRepository) Delete(ctx context.Context, id string) (int, error) {
	ctx, done := r.observe(ctx, "Delete", attribute.String("pokemon.id", id))
	n, err := r.inner.Delete(ctx, id)
	done(err)
	return n, err
}

func (r *instrumentedRepository) DeleteAll(ctx context.Context) (int, error) {
	ctx, done := r.observe(ctx, "DeleteAll")
	n, err := r.inner.DeleteAll(ctx)
	done(err)
	return n, err
}

func (r *instrumentedRepository) Classify(err error) repository.ErrorKind {
	return r.inner.Classify(err)
}
