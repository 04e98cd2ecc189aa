package entities

import "errors"

// Domain errors
var (
	ErrChannelRequired  = errors.New("channelId and teamId are required for Teams notification")
	ErrEmptyModelOutput = errors.New("model returned no content")
	ErrNoModels         = errors.New("no models to evaluate")
)
