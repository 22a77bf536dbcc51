package sapphire

import "errors"

// Errors returned before any request is made. Check them with errors.Is.
var (
	// ErrInvalidConfig is returned by New when the configuration is unusable.
	ErrInvalidConfig = errors.New("sapphire: invalid configuration")

	// ErrInvalidQuery is returned when a read filter is out of range.
	ErrInvalidQuery = errors.New("sapphire: invalid query")

	// ErrUnknownDataset is returned by LookupDataset for unknown names.
	ErrUnknownDataset = errors.New("sapphire: unknown dataset")

	// ErrUnknownService is returned by LookupService for unknown names.
	ErrUnknownService = errors.New("sapphire: unknown service")

	// ErrInvalidRecord is returned by Write when a record cannot be sent.
	ErrInvalidRecord = errors.New("sapphire: invalid record")
)
