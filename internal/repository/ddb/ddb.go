// Package ddb implements the repository interface using AWS DynamoDB.
// This is the only layer that should have knowledge of DynamoDB specifics.
package ddb

import (
	"context"
	"fmt"
	"time"

	"pokedex-backend/internal/domain"
	"pokedex-backend/internal/repository"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Pause bounds between resends of unprocessed BatchWriteItem requests.
const (
	unprocessedBaseDelay = 50 * time.Millisecond
	unprocessedMaxDelay  = 2 * time.Second
)

// maxBatchWrite is the BatchWriteItem request limit.
const maxBatchWrite = 25

// Client defines the DynamoDB operations the repository needs, so tests can
// substitute a fake. *dynamodb.Client satisfies it.
type Client interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	TransactWriteItems(ctx context.Context, params *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
	CreateTable(ctx context.Context, params *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
}

// ddbRepository is the concrete implementation for DynamoDB.
type ddbRepository struct {
	client Client
	config repository.Config
	logger *zap.Logger
	now    func() time.Time
	// wait pauses between resends of unprocessed batch items.
	wait func(ctx context.Context, d time.Duration) error
}

// NewRepository creates a new instance of the DynamoDB repository.
func NewRepository(client Client, config repository.Config, logger *zap.Logger) repository.PokemonRepository {
	return newRepository(client, config, logger)
}

func newRepository(client Client, config repository.Config, logger *zap.Logger) *ddbRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ddbRepository{
		client: client,
		config: config.WithDefaults(),
		logger: logger.Named("ddb"),
		now:    func() time.Time { return time.Now().UTC() },
		wait:   sleepContext,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// onCancel translates the failed condition of one transaction item.
type onCancel func(err error) error

// pendingWrite is a transaction under construction with one translator per item.
type pendingWrite struct {
	items    []types.TransactWriteItem
	onCancel []onCancel
}

func (w *pendingWrite) add(item types.TransactWriteItem, fn onCancel) {
	w.items = append(w.items, item)
	w.onCancel = append(w.onCancel, fn)
}

func (r *ddbRepository) execute(ctx context.Context, w *pendingWrite) error {
	if len(w.items) == 0 {
		return nil
	}
	_, err := r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: w.items})
	if err == nil {
		return nil
	}
	if idx, ok := failedConditionIndex(err); ok && idx < len(w.onCancel) && w.onCancel[idx] != nil {
		return w.onCancel[idx](err)
	}
	return err
}

func duplicateOn(field string, value any) onCancel {
	return func(err error) error {
		return &repository.DuplicateKeyError{Field: field, Value: value, Err: err}
	}
}

func notFoundOn(id string) onCancel {
	return func(err error) error {
		return fmt.Errorf("%w: %v", repository.NewNotFound("pokemon", id), err)
	}
}

// putNew queues the record and its guards, each conditioned on not existing yet.
func (r *ddbRepository) putNew(w *pendingWrite, p domain.Pokemon) error {
	notExists, err := expression.NewBuilder().
		WithCondition(expression.AttributeNotExists(expression.Name("PK"))).
		Build()
	if err != nil {
		return fmt.Errorf("failed to build put condition: %w", err)
	}

	items := []struct {
		value any
		fn    onCancel
	}{
		{toItem(p), duplicateOn("id", p.ID)},
		{nameGuard(p), duplicateOn("name", p.Name)},
		{noGuard(p), duplicateOn("no", p.No)},
	}
	for _, it := range items {
		av, err := attributevalue.MarshalMap(it.value)
		if err != nil {
			return fmt.Errorf("failed to marshal item: %w", err)
		}
		w.add(types.TransactWriteItem{Put: &types.Put{
			TableName:                aws.String(r.config.TableName),
			Item:                     av,
			ConditionExpression:      notExists.Condition(),
			ExpressionAttributeNames: notExists.Names(),
		}}, it.fn)
	}
	return nil
}

func (r *ddbRepository) stamp(p domain.Pokemon) domain.Pokemon {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	now := r.now()
	p.CreatedAt, p.UpdatedAt = now, now
	return p
}

// Create transactionally saves a record and its uniqueness guards.
func (r *ddbRepository) Create(ctx context.Context, pokemon domain.Pokemon) (*domain.Pokemon, error) {
	p := r.stamp(pokemon)
	w := &pendingWrite{}
	if err := r.putNew(w, p); err != nil {
		return nil, err
	}
	if err := r.execute(ctx, w); err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateMany writes records in ordered transactional chunks. A duplicate inside
// the input is reported as a DuplicateKeyError once the records before it are
// written, mirroring an ordered bulk insert.
func (r *ddbRepository) CreateMany(ctx context.Context, pokemons []domain.Pokemon) ([]domain.Pokemon, error) {
	created := make([]domain.Pokemon, 0, len(pokemons))
	perBatch := r.config.RecordsPerBatch()
	seenNames := make(map[string]bool, len(pokemons))
	seenNos := make(map[int]bool, len(pokemons))

	var batch []domain.Pokemon
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		w := &pendingWrite{}
		for _, p := range batch {
			if err := r.putNew(w, p); err != nil {
				return err
			}
		}
		if err := r.execute(ctx, w); err != nil {
			return err
		}
		created = append(created, batch...)
		batch = batch[:0]
		return nil
	}

	for _, pokemon := range pokemons {
		p := r.stamp(pokemon)

		var dup *repository.DuplicateKeyError
		switch {
		case seenNames[p.Name]:
			dup = &repository.DuplicateKeyError{Field: "name", Value: p.Name}
		case seenNos[p.No]:
			dup = &repository.DuplicateKeyError{Field: "no", Value: p.No}
		}
		if dup != nil {
			if err := flush(); err != nil {
				return created, err
			}
			return created, dup
		}
		seenNames[p.Name] = true
		seenNos[p.No] = true

		batch = append(batch, p)
		if len(batch) == perBatch {
			if err := flush(); err != nil {
				return created, err
			}
		}
	}
	if err := flush(); err != nil {
		return created, err
	}

	r.logger.Debug("bulk insert finished", zap.Int("count", len(created)))
	return created, nil
}

// List scans records in table order, skipping offset and collecting limit.
func (r *ddbRepository) List(ctx context.Context, limit, offset int) ([]domain.Pokemon, error) {
	expr, err := expression.NewBuilder().
		WithFilter(expression.Name("EntityType").Equal(expression.Value(entityPokemon))).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build list filter: %w", err)
	}

	paginator := dynamodb.NewScanPaginator(r.client, &dynamodb.ScanInput{
		TableName:                 aws.String(r.config.TableName),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})

	result := []domain.Pokemon{}
	skipped := 0
	for paginator.HasMorePages() && len(result) < limit {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pokemon page: %w", err)
		}
		for _, item := range page.Items {
			if skipped < offset {
				skipped++
				continue
			}
			var rec ddbPokemon
			if err := attributevalue.UnmarshalMap(item, &rec); err != nil {
				return nil, fmt.Errorf("failed to unmarshal pokemon item: %w", err)
			}
			result = append(result, rec.toDomain())
			if len(result) == limit {
				break
			}
		}
	}
	return result, nil
}

// FindByID retrieves a single record by its store identifier.
func (r *ddbRepository) FindByID(ctx context.Context, id string) (*domain.Pokemon, error) {
	result, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.config.TableName),
		Key:            key(recordPK(id), metadataSK),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get pokemon %s: %w", id, err)
	}
	if result.Item == nil {
		return nil, nil
	}
	var rec ddbPokemon
	if err := attributevalue.UnmarshalMap(result.Item, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal pokemon item: %w", err)
	}
	p := rec.toDomain()
	return &p, nil
}

// FindByNo follows the number guard to its owning record.
func (r *ddbRepository) FindByNo(ctx context.Context, no int) (*domain.Pokemon, error) {
	return r.findByGuard(ctx, noPK(no))
}

// FindByName follows the name guard to its owning record. name must already be normalized.
func (r *ddbRepository) FindByName(ctx context.Context, name string) (*domain.Pokemon, error) {
	return r.findByGuard(ctx, namePK(name))
}

func (r *ddbRepository) findByGuard(ctx context.Context, pk string) (*domain.Pokemon, error) {
	result, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.config.TableName),
		Key:            key(pk, uniqueSK),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get guard %s: %w", pk, err)
	}
	if result.Item == nil {
		return nil, nil
	}
	var guard ddbGuard
	if err := attributevalue.UnmarshalMap(result.Item, &guard); err != nil {
		return nil, fmt.Errorf("failed to unmarshal guard item: %w", err)
	}
	return r.FindByID(ctx, guard.OwnerID)
}

// Update rewrites the record and swaps the guards of every changed unique field
// in one transaction.
func (r *ddbRepository) Update(ctx context.Context, current, updated domain.Pokemon) error {
	if current.ID == "" || current.ID != updated.ID {
		return fmt.Errorf("update requires matching ids, got %q and %q", current.ID, updated.ID)
	}
	if updated.UpdatedAt.IsZero() {
		updated.UpdatedAt = r.now()
	}

	set := expression.Set(expression.Name("Name"), expression.Value(updated.Name)).
		Set(expression.Name("No"), expression.Value(updated.No)).
		Set(expression.Name("UpdatedAt"), expression.Value(updated.UpdatedAt.Format(time.RFC3339Nano)))
	if updated.ImageURL != "" {
		set = set.Set(expression.Name("ImageURL"), expression.Value(updated.ImageURL))
	} else {
		set = set.Remove(expression.Name("ImageURL"))
	}
	recordExpr, err := expression.NewBuilder().
		WithUpdate(set).
		WithCondition(expression.AttributeExists(expression.Name("PK"))).
		Build()
	if err != nil {
		return fmt.Errorf("failed to build update expression: %w", err)
	}

	w := &pendingWrite{}
	w.add(types.TransactWriteItem{Update: &types.Update{
		TableName:                 aws.String(r.config.TableName),
		Key:                       key(recordPK(current.ID), metadataSK),
		UpdateExpression:          recordExpr.Update(),
		ConditionExpression:       recordExpr.Condition(),
		ExpressionAttributeNames:  recordExpr.Names(),
		ExpressionAttributeValues: recordExpr.Values(),
	}}, notFoundOn(current.ID))

	if updated.Name != current.Name {
		if err := r.swapGuard(w, namePK(current.Name), nameGuard(updated), duplicateOn("name", updated.Name)); err != nil {
			return err
		}
	}
	if updated.No != current.No {
		if err := r.swapGuard(w, noPK(current.No), noGuard(updated), duplicateOn("no", updated.No)); err != nil {
			return err
		}
	}
	return r.execute(ctx, w)
}

// swapGuard deletes the guard owned by next.OwnerID under oldPK and claims next.PK.
func (r *ddbRepository) swapGuard(w *pendingWrite, oldPK string, next ddbGuard, onDuplicate onCancel) error {
	owned, err := expression.NewBuilder().
		WithCondition(expression.Name("OwnerID").Equal(expression.Value(next.OwnerID))).
		Build()
	if err != nil {
		return fmt.Errorf("failed to build guard condition: %w", err)
	}
	w.add(types.TransactWriteItem{Delete: &types.Delete{
		TableName:                 aws.String(r.config.TableName),
		Key:                       key(oldPK, uniqueSK),
		ConditionExpression:       owned.Condition(),
		ExpressionAttributeNames:  owned.Names(),
		ExpressionAttributeValues: owned.Values(),
	}}, nil)

	notExists, err := expression.NewBuilder().
		WithCondition(expression.AttributeNotExists(expression.Name("PK"))).
		Build()
	if err != nil {
		return fmt.Errorf("failed to build put condition: %w", err)
	}
	av, err := attributevalue.MarshalMap(next)
	if err != nil {
		return fmt.Errorf("failed to marshal guard item: %w", err)
	}
	w.add(types.TransactWriteItem{Put: &types.Put{
		TableName:                aws.String(r.config.TableName),
		Item:                     av,
		ConditionExpression:      notExists.Condition(),
		ExpressionAttributeNames: notExists.Names(),
	}}, onDuplicate)
	return nil
}

// Delete removes a record and both guards. It reports 0 when no record had this ID.
func (r *ddbRepository) Delete(ctx context.Context, id string) (int, error) {
	current, err := r.FindByID(ctx, id)
	if err != nil {
		return 0, err
	}
	if current == nil {
		return 0, nil
	}

	exists, err := expression.NewBuilder().
		WithCondition(expression.AttributeExists(expression.Name("PK"))).
		Build()
	if err != nil {
		return 0, fmt.Errorf("failed to build delete condition: %w", err)
	}

	w := &pendingWrite{}
	w.add(types.TransactWriteItem{Delete: &types.Delete{
		TableName:                aws.String(r.config.TableName),
		Key:                      key(recordPK(id), metadataSK),
		ConditionExpression:      exists.Condition(),
		ExpressionAttributeNames: exists.Names(),
	}}, notFoundOn(id))
	w.add(types.TransactWriteItem{Delete: &types.Delete{
		TableName: aws.String(r.config.TableName),
		Key:       key(namePK(current.Name), uniqueSK),
	}}, nil)
	w.add(types.TransactWriteItem{Delete: &types.Delete{
		TableName: aws.String(r.config.TableName),
		Key:       key(noPK(current.No), uniqueSK),
	}}, nil)

	if err := r.execute(ctx, w); err != nil {
		if repository.IsNotFound(err) {
			// Deleted concurrently between the read and the transaction.
			return 0, nil
		}
		return 0, err
	}
	return 1, nil
}

// DeleteAll scans every item this adapter owns and batch-deletes it.
func (r *ddbRepository) DeleteAll(ctx context.Context) (int, error) {
	expr, err := expression.NewBuilder().
		WithFilter(expression.Name("PK").BeginsWith(tablePrefix)).
		WithProjection(expression.NamesList(expression.Name("PK"), expression.Name("SK"), expression.Name("EntityType"))).
		Build()
	if err != nil {
		return 0, fmt.Errorf("failed to build scan expression: %w", err)
	}

	paginator := dynamodb.NewScanPaginator(r.client, &dynamodb.ScanInput{
		TableName:                 aws.String(r.config.TableName),
		FilterExpression:          expr.Filter(),
		ProjectionExpression:      expr.Projection(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})

	var requests []types.WriteRequest
	records := 0
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return records, fmt.Errorf("failed to scan items for deletion: %w", err)
		}
		for _, item := range page.Items {
			if et, ok := item["EntityType"].(*types.AttributeValueMemberS); ok && et.Value == entityPokemon {
				records++
			}
			requests = append(requests, types.WriteRequest{DeleteRequest: &types.DeleteRequest{
				Key: map[string]types.AttributeValue{"PK": item["PK"], "SK": item["SK"]},
			}})
		}
	}

	for start := 0; start < len(requests); start += maxBatchWrite {
		end := min(start+maxBatchWrite, len(requests))
		if err := r.batchWrite(ctx, requests[start:end]); err != nil {
			return records, err
		}
	}

	r.logger.Info("deleted all pokemon", zap.Int("records", records), zap.Int("items", len(requests)))
	return records, nil
}

// batchWrite sends one BatchWriteItem and resubmits whatever DynamoDB reports
// as unprocessed until nothing is left, doubling the pause between resends.
func (r *ddbRepository) batchWrite(ctx context.Context, requests []types.WriteRequest) error {
	pending := map[string][]types.WriteRequest{r.config.TableName: requests}
	delay := unprocessedBaseDelay
	for attempt := 0; ; attempt++ {
		out, err := r.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{RequestItems: pending})
		if err != nil {
			return fmt.Errorf("failed to batch delete items: %w", err)
		}
		pending = out.UnprocessedItems
		if len(pending[r.config.TableName]) == 0 {
			return nil
		}

		r.logger.Debug("resending unprocessed items",
			zap.Int("items", len(pending[r.config.TableName])),
			zap.Int("attempt", attempt+1),
			zap.Duration("delay", delay),
		)
		if err := r.wait(ctx, delay); err != nil {
			return fmt.Errorf("batch delete interrupted with %d items unprocessed: %w", len(pending[r.config.TableName]), err)
		}
		delay = min(delay*2, unprocessedMaxDelay)
	}
}
