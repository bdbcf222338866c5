package xcontext

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/slotdraw/backend/config"
	"github.com/slotdraw/backend/pkg/logger"
	"gorm.io/gorm"
)

type (
	dbKey          struct{}
	dbTxKey        struct{}
	loggerKey      struct{}
	configsKey     struct{}
	snowflakeKey   struct{}
	httpRequestKey struct{}
	startTimeKey   struct{}
	errorKey       struct{}
	requestIDKey   struct{}
)

type dbTx struct {
	tx        *gorm.DB
	committed bool
}

func WithDB(ctx context.Context, db *gorm.DB) context.Context {
	return context.WithValue(ctx, dbKey{}, db)
}

// DB returns the running transaction if there is one, otherwise the database.
func DB(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(dbTxKey{}).(*dbTx); ok && tx != nil && !tx.committed {
		return tx.tx.WithContext(ctx)
	}

	db, ok := ctx.Value(dbKey{}).(*gorm.DB)
	if !ok {
		return nil
	}

	return db.WithContext(ctx)
}

// WithDBTransaction begins a transaction. Every DB(ctx) call on the returned
// context runs inside it until it is committed or rolled back.
func WithDBTransaction(ctx context.Context) context.Context {
	db, ok := ctx.Value(dbKey{}).(*gorm.DB)
	if !ok {
		return ctx
	}

	return context.WithValue(ctx, dbTxKey{}, &dbTx{tx: db.WithContext(ctx).Begin()})
}

func WithCommitDBTransaction(ctx context.Context) error {
	tx, ok := ctx.Value(dbTxKey{}).(*dbTx)
	if !ok || tx == nil || tx.committed {
		return nil
	}

	tx.committed = true
	return tx.tx.Commit().Error
}

// WithRollbackDBTransaction rolls back the transaction unless it was already
// committed. It is meant to be deferred right after WithDBTransaction.
func WithRollbackDBTransaction(ctx context.Context) {
	tx, ok := ctx.Value(dbTxKey{}).(*dbTx)
	if !ok || tx == nil || tx.committed {
		return
	}

	tx.committed = true
	tx.tx.Rollback()
}

func WithLogger(ctx context.Context, logger logger.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

func Logger(ctx context.Context) logger.Logger {
	l, ok := ctx.Value(loggerKey{}).(logger.Logger)
	if !ok {
		return logger.NewLogger(logger.SILENCE)
	}

	return l
}

func WithConfigs(ctx context.Context, cfg config.Configs) context.Context {
	return context.WithValue(ctx, configsKey{}, cfg)
}

func Configs(ctx context.Context) config.Configs {
	cfg, ok := ctx.Value(configsKey{}).(config.Configs)
	if !ok {
		return config.Default()
	}

	return cfg
}

func WithSnowFlake(ctx context.Context, node *snowflake.Node) context.Context {
	return context.WithValue(ctx, snowflakeKey{}, node)
}

func SnowFlake(ctx context.Context) *snowflake.Node {
	node, _ := ctx.Value(snowflakeKey{}).(*snowflake.Node)
	return node
}

func WithHTTPRequest(ctx context.Context, req *http.Request) context.Context {
	return context.WithValue(ctx, httpRequestKey{}, req)
}

func HTTPRequest(ctx context.Context) *http.Request {
	req, _ := ctx.Value(httpRequestKey{}).(*http.Request)
	return req
}

func WithStartTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, startTimeKey{}, t)
}

func StartTime(ctx context.Context) time.Time {
	t, _ := ctx.Value(startTimeKey{}).(time.Time)
	return t
}

func WithError(ctx context.Context, err error) context.Context {
	return context.WithValue(ctx, errorKey{}, err)
}

func Error(ctx context.Context) error {
	err, _ := ctx.Value(errorKey{}).(error)
	return err
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// Inherit copies the service-wide values (database, logger, configs,
// snowflake node) of src into dst. It is used to give a request context the
// values of the root context while keeping the request cancellation.
func Inherit(dst, src context.Context) context.Context {
	if db, ok := src.Value(dbKey{}).(*gorm.DB); ok {
		dst = WithDB(dst, db)
	}

	if l, ok := src.Value(loggerKey{}).(logger.Logger); ok {
		dst = WithLogger(dst, l)
	}

	if cfg, ok := src.Value(configsKey{}).(config.Configs); ok {
		dst = WithConfigs(dst, cfg)
	}

	if node := SnowFlake(src); node != nil {
		dst = WithSnowFlake(dst, node)
	}

	return dst
}
