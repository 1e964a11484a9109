package eventstore

import (
	"git.home.luguber.info/inful/pillarsite/internal/foundation/errors"
)

var (
	// ErrDatabaseOpenFailed indicates the SQLite database could not be opened.
	ErrDatabaseOpenFailed = errors.HistoryError("could not open build history database").Build()

	// ErrInitializeSchemaFailed indicates the database schema could not be initialized.
	ErrInitializeSchemaFailed = errors.HistoryError("failed to initialize build history schema").Build()

	// ErrEventAppendFailed indicates appending an event failed.
	ErrEventAppendFailed = errors.HistoryError("failed to append event to build history").Build()

	// ErrEventQueryFailed indicates querying events failed.
	ErrEventQueryFailed = errors.HistoryError("failed to query build history").Build()

	// ErrEventPruneFailed indicates old builds could not be removed.
	ErrEventPruneFailed = errors.HistoryError("failed to prune build history").Build()

	// ErrUnmarshalPayloadFailed indicates an event payload could not be decoded.
	ErrUnmarshalPayloadFailed = errors.HistoryError("failed to unmarshal event payload").Build()
)
