package lineitem

import "github.com/sangkips/lineform-api/pkg/apperror"

var (
	ErrGroupNotFound   = apperror.NewNotFoundError("Group")
	ErrEntryNotFound   = apperror.NewNotFoundError("Entry")
	ErrDuplicateGroup  = apperror.NewConflictError("Group already exists in this form")
	ErrGroupIDRequired = apperror.NewBadRequestError("Group id is required")
	ErrInvalidCurrency = apperror.NewBadRequestError("Unsupported currency code")
)
