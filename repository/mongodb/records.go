package mongodb

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/fastygo/identity/domain"
	appLogger "github.com/fastygo/identity/pkg/logger"
)

const (
	fieldID       = "_id"
	fieldDeleteOn = "deleteOn"
)

// records is the collection-facing core shared by the user and role stores.
// D is the persisted document type.
type records[D any] struct {
	coll      *mongo.Collection
	indexes   []mongo.IndexModel
	boot      *bootstrap
	timeout   time.Duration
	duplicate domain.ResultError
	logger    *zap.Logger
}

func newRecords[D any](db *mongo.Database, collection string, natural []mongo.IndexModel, duplicate domain.ResultError, cfg settings) (*records[D], error) {
	if db == nil {
		return nil, domain.MissingArgument("database")
	}
	if collection == "" {
		return nil, domain.MissingArgument("collection name")
	}
	indexes := make([]mongo.IndexModel, 0, len(natural)+len(cfg.indexes))
	indexes = append(indexes, natural...)
	indexes = append(indexes, cfg.indexes...)

	return &records[D]{
		coll:      db.Collection(collection),
		indexes:   indexes,
		boot:      newBootstrap(),
		timeout:   cfg.bootstrapTimeout,
		duplicate: duplicate,
		logger:    cfg.logger.With(zap.String("collection", collection)),
	}, nil
}

// activeFilter matches the record by id only while it is not soft-deleted.
// Update and delete use it as their concurrency guard.
func activeFilter(id string) bson.D {
	return bson.D{{Key: fieldID, Value: id}, {Key: fieldDeleteOn, Value: nil}}
}

func active(filter ...bson.E) bson.D {
	return append(bson.D{{Key: fieldDeleteOn, Value: nil}}, filter...)
}

func (r *records[D]) ensureIndexes(ctx context.Context) error {
	start := time.Now()
	r.logger.Info("ensuring indexes", zap.Int("count", len(r.indexes)))

	names, err := r.coll.Indexes().CreateMany(ctx, r.indexes)
	if err != nil {
		r.logger.Error("index bootstrap failed", zap.Error(err), zap.Duration("elapsed", time.Since(start)))
		return domain.Unavailable("create indexes", err)
	}

	r.logger.Info("indexes ready", zap.Strings("indexes", names), zap.Duration("elapsed", time.Since(start)))
	return nil
}

// ready blocks until the index bootstrap has completed.
func (r *records[D]) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return domain.Canceled(err)
	}
	if err := r.boot.Wait(ctx, r.timeout, r.ensureIndexes); err != nil {
		return r.classify(ctx, "bootstrap", err)
	}
	return nil
}

func (r *records[D]) insert(ctx context.Context, id string, doc D) (domain.Result, error) {
	if err := r.ready(ctx); err != nil {
		return domain.Result{}, err
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			res := r.duplicateResult(err)
			r.log(ctx).Warn("insert rejected by unique index", zap.String("id", id), zap.String("reason", res.Errors[0].Code))
			return res, nil
		}
		return domain.Result{}, r.classify(ctx, "insert", err)
	}
	return domain.Success, nil
}

// findOne returns nil, nil when nothing matches.
func (r *records[D]) findOne(ctx context.Context, filter bson.D) (*D, error) {
	if err := r.ready(ctx); err != nil {
		return nil, err
	}
	var doc D
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, r.classify(ctx, "find", err)
	}
	return &doc, nil
}

func (r *records[D]) findMany(ctx context.Context, filter bson.D) ([]D, error) {
	if err := r.ready(ctx); err != nil {
		return nil, err
	}
	cursor, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, r.classify(ctx, "find", err)
	}
	var docs []D
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, r.classify(ctx, "find", err)
	}
	return docs, nil
}

// replaceActive swaps the whole document as long as the stored record is
// still active. A miss means the record vanished or was deleted meanwhile.
func (r *records[D]) replaceActive(ctx context.Context, id string, doc D) (domain.Result, error) {
	if err := r.ready(ctx); err != nil {
		return domain.Result{}, err
	}
	res, err := r.coll.ReplaceOne(ctx, activeFilter(id), doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			out := r.duplicateResult(err)
			r.log(ctx).Warn("replace rejected by unique index", zap.String("id", id), zap.String("reason", out.Errors[0].Code))
			return out, nil
		}
		return domain.Result{}, r.classify(ctx, "replace", err)
	}
	return r.guarded(ctx, "replace", id, res.MatchedCount), nil
}

// markDeleted persists only the soft-delete marker, under the same guard.
func (r *records[D]) markDeleted(ctx context.Context, id string, at time.Time) (domain.Result, error) {
	if err := r.ready(ctx); err != nil {
		return domain.Result{}, err
	}
	update := bson.D{{Key: "$set", Value: bson.D{{Key: fieldDeleteOn, Value: at}}}}
	res, err := r.coll.UpdateOne(ctx, activeFilter(id), update)
	if err != nil {
		return domain.Result{}, r.classify(ctx, "soft delete", err)
	}
	return r.guarded(ctx, "soft delete", id, res.MatchedCount), nil
}

func (r *records[D]) guarded(ctx context.Context, op, id string, matched int64) domain.Result {
	if matched == 1 {
		return domain.Success
	}
	r.log(ctx).Warn("optimistic concurrency check failed", zap.String("op", op), zap.String("id", id))
	return domain.Failed(domain.ResultError{
		Code:        domain.ResultConcurrencyFailure,
		Description: "record " + id + " is no longer active",
	})
}

func (r *records[D]) duplicateResult(err error) domain.Result {
	if duplicateOnID(err) {
		return domain.Failed(domain.ResultError{Code: domain.ResultDuplicateID, Description: "id already in use"})
	}
	return domain.Failed(r.duplicate)
}

const primaryIndex = "_id_"

// duplicateOnID reports whether a duplicate-key failure was raised by the
// primary key index. The server's keyPattern wins when present; otherwise
// the index name is read from the "index: <name> " token of the message.
func duplicateOnID(err error) bool {
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if pattern, ok := e.Raw.Lookup("keyPattern").DocumentOK(); ok {
				if elems, err := pattern.Elements(); err == nil && len(elems) == 1 && elems[0].Key() == fieldID {
					return true
				}
				continue
			}
			if indexFromMessage(e.Message) == primaryIndex {
				return true
			}
		}
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) {
		return indexFromMessage(ce.Message) == primaryIndex
	}
	return false
}

// indexFromMessage extracts the index name from an E11000 message:
// "E11000 duplicate key error collection: db.users index: <name> dup key: {...}".
func indexFromMessage(msg string) string {
	const marker = " index: "
	i := strings.Index(msg, marker)
	if i < 0 {
		return ""
	}
	name := msg[i+len(marker):]
	if j := strings.IndexByte(name, ' '); j >= 0 {
		name = name[:j]
	}
	return name
}

// classify maps driver and context failures onto domain error codes.
func (r *records[D]) classify(ctx context.Context, op string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return domain.Canceled(ctxErr)
	}
	var dErr *domain.Error
	if errors.As(err, &dErr) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return domain.Canceled(err)
	}
	r.log(ctx).Error("backing store failure", zap.String("op", op), zap.Error(err))
	return domain.Unavailable(op, err)
}

func (r *records[D]) log(ctx context.Context) *zap.Logger {
	return appLogger.WithRequestID(ctx, r.logger)
}

// Ready reports whether index bootstrap finished successfully.
func (r *records[D]) Ready() bool {
	done, err := r.boot.Finished()
	return done && err == nil
}
