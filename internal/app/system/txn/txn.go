// internal/app/system/txn/txn.go
package txn

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// IsNotSupported reports whether err means the deployment cannot run
// multi-document transactions (standalone mongod, some DocumentDB setups).
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) {
		switch ce.Code {
		case 20, // IllegalOperation
			51,  // NoReplicationEnabled
			263: // OperationNotSupportedInTransaction
			return true
		}
	}

	msg := strings.ToLower(err.Error())
	has := func(s string) bool { return strings.Contains(msg, s) }
	switch {
	case has("transaction") && has("replica set"):
		return true
	case has("session") && has("not supported"):
		return true
	case has("transaction") && has("session"):
		return true
	case has("illegal operation"):
		return true
	}
	return false
}

// Run executes fn inside a MongoDB transaction. When the deployment does not
// support transactions, fn runs once more without one and the writes are
// applied individually.
func Run(ctx context.Context, client *mongo.Client, log *zap.Logger, fn func(ctx context.Context) error) error {
	return runWithFallback(ctx, log, func(ctx context.Context, fn func(ctx context.Context) error) error {
		sess, err := client.StartSession()
		if err != nil {
			return err
		}
		defer sess.EndSession(ctx)

		_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
			return nil, fn(sc)
		})
		return err
	}, fn)
}

// runWithFallback runs fn through inTx, and directly when inTx reports that
// transactions are unavailable.
func runWithFallback(ctx context.Context, log *zap.Logger, inTx func(context.Context, func(context.Context) error) error, fn func(ctx context.Context) error) error {
	err := inTx(ctx, fn)
	if err != nil && IsNotSupported(err) {
		log.Warn("transactions not supported; running without", zap.Error(err))
		return fn(ctx)
	}
	return err
}
