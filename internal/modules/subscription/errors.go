package subscription

import "errors"

var (
	ErrSelfSubscription  = errors.New("You cannot subscribe to yourself.")
	ErrAlreadySubscribed = errors.New("You are already subscribed to this author.")
	ErrNotSubscribed     = errors.New("You are not subscribed to this author.")
)
