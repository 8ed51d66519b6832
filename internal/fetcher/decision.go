package fetcher

// action is what a lookup does before touching the network.
type action int

const (
	actionServeCached action = iota
	actionRefresh
)

// decide picks between serving the stored entry and refreshing it.
// Only a present and fresh entry is served without a network call.
func decide(present, fresh bool) action {
	if present && fresh {
		return actionServeCached
	}
	return actionRefresh
}

// outcome is what a failed refresh resolves to.
type outcome int

const (
	outcomeStale outcome = iota
	outcomeFail
)

// resolveFailure decides what a failed refresh returns. Freshness is irrelevant here:
// any stored entry, however old, is preferred over surfacing the failure.
func resolveFailure(present bool) outcome {
	if present {
		return outcomeStale
	}
	return outcomeFail
}
