package pokemon

import (
	"encoding/json"

	"pokedex-backend/internal/repository"
	appErrors "pokedex-backend/pkg/errors"

	"go.uber.org/zap"
)

const internalMessage = "Can't create Pokemon - check server logs"

// HandleExceptions maps a store failure onto the application error kinds.
// Errors that already carry a kind pass through unchanged. A uniqueness
// violation becomes CONFLICT naming the offending key; anything else is
// INTERNAL with a generic message, the cause staying in the logs.
func HandleExceptions(logger *zap.Logger, classifier repository.ErrorClassifier, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := appErrors.As(err); ok {
		return err
	}

	if classifier.Classify(err) == repository.KindConflict {
		logger.Warn("duplicate key rejected by store", zap.Error(err))
		return appErrors.NewConflict("Pokemon exists in db "+duplicateKeyJSON(err), err)
	}

	logger.Error("store operation failed", zap.Error(err))
	return appErrors.Wrap(err, internalMessage)
}

// duplicateKeyJSON renders the duplicate key as a JSON object, or "{}" when
// the driver did not say which key collided.
func duplicateKeyJSON(err error) string {
	dup, ok := repository.AsDuplicateKey(err)
	if !ok {
		return "{}"
	}
	b, marshalErr := json.Marshal(dup.KeyValue())
	if marshalErr != nil {
		return "{}"
	}
	return string(b)
}
