package apperrors

var (
	// Kinds, compare with errors.Is
	ErrValidation   = &AppError{Code: CodeInvalidArgument}
	ErrPersistence  = &AppError{Code: CodeInternal}
	ErrNotFoundKind = &AppError{Code: CodeNotFound}

	ErrNotMatched           = New(CodeNotMatched, "users are not matched")
	ErrAccessDenied         = New(CodePermissionDenied, "user is not a participant of this conversation")
	ErrConversationNotFound = NotFound("conversation not found")
	ErrMissingUsers         = Validation("fromUserId and toUserId are required")
	ErrEmptyContent         = Validation("content cannot be empty")
	ErrInvalidUserID        = Validation("user ids cannot contain '#'")
)
