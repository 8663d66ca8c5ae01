package ddb

import (
	"errors"

	"pokedex-backend/internal/repository"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
)

const (
	codeConditionalCheckFailed          = "ConditionalCheckFailed"
	codeConditionalCheckFailedException = "ConditionalCheckFailedException"
)

// Classify implements repository.ErrorClassifier. A failed uniqueness
// condition is the DynamoDB equivalent of a duplicate key.
func (r *ddbRepository) Classify(err error) repository.ErrorKind {
	return Classify(err)
}

// Classify maps a DynamoDB error onto a repository.ErrorKind.
func Classify(err error) repository.ErrorKind {
	if err == nil {
		return repository.KindOther
	}
	if _, ok := repository.AsDuplicateKey(err); ok {
		return repository.KindConflict
	}

	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return repository.KindConflict
	}

	if _, ok := failedConditionIndex(err); ok {
		return repository.KindConflict
	}

	var ae smithy.APIError
	if errors.As(err, &ae) && ae.ErrorCode() == codeConditionalCheckFailedException {
		return repository.KindConflict
	}
	return repository.KindOther
}

// failedConditionIndex returns the position of the first transaction item
// whose condition failed, if err is a cancelled transaction.
func failedConditionIndex(err error) (int, bool) {
	var tce *types.TransactionCanceledException
	if !errors.As(err, &tce) {
		return 0, false
	}
	for i, reason := range tce.CancellationReasons {
		if reason.Code != nil && *reason.Code == codeConditionalCheckFailed {
			return i, true
		}
	}
	return 0, false
}
