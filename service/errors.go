package service

import "errors"

// Error kinds. Handlers map these to HTTP statuses with errors.Is.
var (
	ErrUnauthorized    = errors.New("unauthorized")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrInternal        = errors.New("internal error")
)

// Error is a client-facing failure: Message is safe to return verbatim and
// Kind classifies it.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

var (
	ErrInvalidToken = newError(ErrUnauthorized, "Invalid or expired token.")

	ErrInvalidCredentials    = newError(ErrUnauthorized, "Invalid credentials.")
	ErrInvalidRefreshToken   = newError(ErrUnauthorized, "Invalid or expired refresh token.")
	ErrRefreshNotRecognized  = newError(ErrUnauthorized, "Refresh token is invalid or has been revoked.")
	ErrMissingAccessToken    = newError(ErrUnauthorized, "Unauthorized access: Access token not provided.")
	ErrInvalidAccessToken    = newError(ErrUnauthorized, "Invalid or expired access token.")
	ErrAccessTokenNoSubject  = newError(ErrUnauthorized, "Invalid access token: No subject found.")
	ErrAccessTokenNoSuchUser = newError(ErrUnauthorized, "Invalid access token: User not found.")

	ErrEmailTaken    = newError(ErrConflict, "User with this email already exists.")
	ErrUsernameTaken = newError(ErrConflict, "Username is already taken.")

	ErrInvalidRecipeID   = newError(ErrInvalidArgument, "Invalid recipe ID format.")
	ErrScoreOutOfRange   = newError(ErrInvalidArgument, "Score must be between 0 and 5.")
	ErrRecipeNotFound    = newError(ErrNotFound, "Recipe not found.")
	ErrFavoriteNotFound  = newError(ErrNotFound, "Recipe not found in favorites.")
	ErrGenerationFailed  = newError(ErrInternal, "AI service failed to generate recipes. Please try again later.")
	ErrGenerationInvalid = newError(ErrInternal, "AI service returned an invalid response.")
)
